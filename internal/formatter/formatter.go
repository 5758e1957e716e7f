// package formatter renders catalog records as plain text, Markdown, CSV or JSON and writes exports to disk
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/niliflix/internal/models"
	"github.com/desertthunder/niliflix/internal/shared"
)

// FavoriteMark prefixes favorite movies in text and Markdown output.
const FavoriteMark = "♥"

// Marker reports whether a movie is a favorite. A nil Marker marks nothing.
type Marker func(movieID string) bool

func (m Marker) marked(id string) bool {
	return m != nil && m(id)
}

// Format is an output format for movie lists.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts text, markdown (md), csv or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, markdown, csv or json)", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// RenderMovies renders movies in the given format.
func RenderMovies(format Format, title string, movies []models.Movie, mark Marker) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return MoviesToMarkdown(title, movies, mark)
	case FormatCSV:
		return MoviesToCSV(movies, mark)
	case FormatJSON:
		return shared.MarshalJSON(movies, true)
	default:
		return MoviesToText(movies, mark)
	}
}

// MoviesToCSV converts movies to CSV with columns: ID, Title, Genre, Director, Year, Rating, Favorite
func MoviesToCSV(movies []models.Movie, mark Marker) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Genre", "Director", "Year", "Rating", "Favorite"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range movies {
		record := []string{
			m.ID,
			m.Title,
			m.Genre.Name,
			m.Director.Name,
			optionalInt(m.ReleaseYear),
			optionalRating(m.Rating),
			strconv.FormatBool(mark.marked(m.ID)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// MoviesToMarkdown converts movies to a Markdown document headed by title
func MoviesToMarkdown(title string, movies []models.Movie, mark Marker) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(movies))

	buf.WriteString("## Movies\n\n")
	for i, m := range movies {
		prefix := ""
		if mark.marked(m.ID) {
			prefix = FavoriteMark + " "
		}
		fmt.Fprintf(&buf, "%d. %s**%s**%s\n", i+1, prefix, m.Title, details(m))
		if m.Description != "" {
			fmt.Fprintf(&buf, "   %s\n", m.Description)
		}
	}

	return buf.Bytes(), nil
}

// MoviesToText converts movies to a numbered plain text list
func MoviesToText(movies []models.Movie, mark Marker) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Movies: %d\n\n", len(movies))
	for i, m := range movies {
		prefix := "  "
		if mark.marked(m.ID) {
			prefix = FavoriteMark + " "
		}
		fmt.Fprintf(&buf, "%s%d. %s%s\n", prefix, i+1, m.Title, details(m))
	}

	return buf.Bytes(), nil
}

// MovieToText renders a single movie with its genre, director and synopsis.
func MovieToText(m models.Movie, favorite bool) []byte {
	var buf bytes.Buffer

	title := m.Title
	if favorite {
		title = FavoriteMark + " " + title
	}
	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "ID: %s\n", m.ID)
	if m.ReleaseYear != 0 {
		fmt.Fprintf(&buf, "Year: %d\n", m.ReleaseYear)
	}
	if m.Rating != 0 {
		fmt.Fprintf(&buf, "Rating: %s\n", optionalRating(m.Rating))
	}
	if m.Genre.Name != "" {
		fmt.Fprintf(&buf, "Genre: %s\n", m.Genre.Name)
	}
	if m.Director.Name != "" {
		fmt.Fprintf(&buf, "Director: %s\n", m.Director.Name)
	}
	if len(m.Actors) > 0 {
		fmt.Fprintf(&buf, "Actors: %s\n", strings.Join(m.Actors, ", "))
	}
	if m.Description != "" {
		fmt.Fprintf(&buf, "\n%s\n", m.Description)
	}

	return buf.Bytes()
}

// DirectorToText renders a director's name, lifespan and bio.
func DirectorToText(d models.Director) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", d.Name)
	switch {
	case d.Birth != "" && d.Death != "":
		fmt.Fprintf(&buf, "Born: %s, Died: %s\n", d.Birth, d.Death)
	case d.Birth != "":
		fmt.Fprintf(&buf, "Born: %s\n", d.Birth)
	}
	if d.Bio != "" {
		fmt.Fprintf(&buf, "\n%s\n", d.Bio)
	}

	return buf.Bytes()
}

// GenreToText renders a genre's name and description.
func GenreToText(g models.Genre) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", g.Name)
	if g.Description != "" {
		fmt.Fprintf(&buf, "\n%s\n", g.Description)
	}

	return buf.Bytes()
}

// UserToText renders a profile; favorites are the user's favorite movies in catalog order.
func UserToText(u models.User, favorites []models.Movie) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Username: %s\n", u.Username)
	if u.Email != "" {
		fmt.Fprintf(&buf, "Email: %s\n", u.Email)
	}
	if !u.Birthday.IsZero() {
		fmt.Fprintf(&buf, "Birthday: %s\n", u.Birthday)
	}

	fmt.Fprintf(&buf, "Favorites: %d\n", len(u.FavoriteMovies))
	for _, m := range favorites {
		fmt.Fprintf(&buf, "  %s %s\n", FavoriteMark, m.Title)
	}

	return buf.Bytes()
}

// details renders " (Genre, dir. Director, Year)" for the parts that are present.
func details(m models.Movie) string {
	var parts []string
	if m.Genre.Name != "" {
		parts = append(parts, m.Genre.Name)
	}
	if m.Director.Name != "" {
		parts = append(parts, "dir. "+m.Director.Name)
	}
	if m.ReleaseYear != 0 {
		parts = append(parts, strconv.Itoa(m.ReleaseYear))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func optionalRating(r float64) string {
	if r == 0 {
		return ""
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WritePoster downloads the movie's poster into dir, named after the movie ID.
//
// The extension is taken from the image URL and defaults to .jpg.
func WritePoster(m models.Movie, dir string) (string, error) {
	if m.ImagePath == "" {
		return "", fmt.Errorf("%w: %s has no poster", shared.ErrNotFound, m.Title)
	}

	data, err := DownloadImage(m.ImagePath)
	if err != nil {
		return "", err
	}

	ext := path.Ext(strings.SplitN(m.ImagePath, "?", 2)[0])
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file := filepath.Join(dir, m.ID+ext)
	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write poster: %w", err)
	}
	return file, nil
}

// WriteMoviesExport renders movies and writes them to file.
//
// Defaults to {name}{ext} in the working directory when file is empty.
func WriteMoviesExport(format Format, name string, movies []models.Movie, mark Marker, file string) (string, error) {
	if file == "" {
		file = name + format.Extension()
	}

	data, err := RenderMovies(format, name, movies, mark)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", format, err)
	}

	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return file, nil
}
