// package models defines the data model for the movie catalog client
package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Validator is implemented by every record decoded from the API.
type Validator interface {
	Validate() error // Validate reports whether the record is well-formed
}

var (
	_ Validator = (*Movie)(nil)
	_ Validator = (*Genre)(nil)
	_ Validator = (*Director)(nil)
	_ Validator = (*User)(nil)
	_ Validator = (*LoginResult)(nil)
)

// Genre describes a movie genre.
type Genre struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

func (g *Genre) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("genre: missing name")
	}
	return nil
}

// Director describes a movie director.
type Director struct {
	Name  string `json:"Name"`
	Bio   string `json:"Bio"`
	Birth string `json:"Birth,omitempty"`
	Death string `json:"Death,omitempty"`
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// BirthYear extracts the first four-digit year from Birth, or 0 when there is none.
func (d *Director) BirthYear() int {
	year, err := strconv.Atoi(yearPattern.FindString(d.Birth))
	if err != nil {
		return 0
	}
	return year
}

func (d *Director) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("director: missing name")
	}
	return nil
}

// Movie is a read-only catalog record identified by ID.
type Movie struct {
	ID          string   `json:"_id"`
	Title       string   `json:"Title"`
	Description string   `json:"Description"` // synopsis
	Genre       Genre    `json:"Genre"`
	Director    Director `json:"Director"`
	Actors      []string `json:"Actors,omitempty"`
	ImagePath   string   `json:"ImagePath,omitempty"`
	Featured    bool     `json:"Featured,omitempty"`
	ReleaseYear int      `json:"ReleaseYear,omitempty"`
	Rating      float64  `json:"Rating,omitempty"`
}

func (m *Movie) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("movie: missing _id")
	}
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("movie %s: missing title", m.ID)
	}
	return nil
}

// User is the server-owned profile record.
type User struct {
	ID             string      `json:"_id,omitempty"`
	Username       string      `json:"Username"`
	Email          string      `json:"Email,omitempty"`
	Birthday       Date        `json:"Birthday,omitzero"`
	FavoriteMovies FavoriteIDs `json:"FavoriteMovies"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return fmt.Errorf("user: missing username")
	}
	for _, id := range u.FavoriteMovies {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("user %s: empty favorite movie id", u.Username)
		}
	}
	return nil
}

// FavoriteIDs is the list of favorite movie ids on a [User].
//
// The API returns either plain id strings or populated movie objects; both decode to ids.
type FavoriteIDs []string

func (f *FavoriteIDs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("favorite movies: %w", err)
	}

	ids := make(FavoriteIDs, 0, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			ids = append(ids, id)
			continue
		}

		var ref struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(item, &ref); err != nil {
			return fmt.Errorf("favorite movies: unsupported entry %s", string(item))
		}
		ids = append(ids, ref.ID)
	}

	*f = ids
	return nil
}

// Credentials is the register/login payload.
type Credentials struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
	Email    string `json:"Email,omitempty"`
	Birthday Date   `json:"Birthday,omitzero"`
}

// ProfileEdits is a full profile replacement sent to the API.
type ProfileEdits struct {
	Username string `json:"Username"`
	Password string `json:"Password,omitempty"`
	Email    string `json:"Email,omitempty"`
	Birthday Date   `json:"Birthday,omitzero"`
}

// Validate performs the client-side checks that need no server round trip.
func (e ProfileEdits) Validate() error {
	if strings.TrimSpace(e.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if e.Email != "" && !strings.Contains(e.Email, "@") {
		return fmt.Errorf("email %q is not valid", e.Email)
	}
	return nil
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (l *LoginResult) Validate() error {
	if strings.TrimSpace(l.Token) == "" {
		return fmt.Errorf("login: missing token")
	}
	return l.User.Validate()
}

// Session is the authenticated identity held by the session store.
//
// The zero value is the unauthenticated session.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user"`
}

// Authenticated reports whether both the token and user id are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.UserID != ""
}

// Date is a calendar date that accepts RFC3339 timestamps or plain "2006-01-02" dates.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// ParseDate parses an RFC3339 timestamp or a "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{t.UTC()}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s: expected a string", data)
	}
	if s == "" {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
