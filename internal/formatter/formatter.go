// package formatter provides functions to export movie result sets to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ferntree/marquee/internal/models"
)

// ExportToCSV converts a ResultSet to CSV format with columns: ID, Title, Rating, Description
func ExportToCSV(set *models.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Rating", "Description"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range set.Movies {
		record := []string{
			movie.ID,
			movie.Title,
			strconv.FormatFloat(movie.Rating, 'f', 1, 64),
			movie.Description,
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

// ExportToMarkdown converts a ResultSet to Markdown format with optional cover image
func ExportToMarkdown(set *models.ResultSet, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", set.Label))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(set.Movies)))

	buf.WriteString("## Movies\n\n")
	for i, movie := range set.Movies {
		descPart := ""
		if movie.Description != "" {
			descPart = fmt.Sprintf(" — %s", movie.Description)
		}
		buf.WriteString(fmt.Sprintf("%d. **%s** (%.1f/5)%s\n", i+1, movie.Title, movie.Rating, descPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a ResultSet to plain text format
func ExportToText(set *models.ResultSet) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Result set: %s\n", set.Label))
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(set.Movies)))

	for i, movie := range set.Movies {
		buf.WriteString(fmt.Sprintf("%d. %s (%.1f/5)\n", i+1, movie.Title, movie.Rating))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads a poster image from the given URL and returns the raw bytes
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

// ToMetadataJSON generates a JSON representation of a result set's metadata (without the movie list)
func ToMetadataJSON(set *models.ResultSet) ([]byte, error) {
	metadata := map[string]any{
		"label": set.Label,
		"count": len(set.Movies),
	}
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return data, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	MoviesFile   string
	MetadataFile string
}

// WriteCSVExport exports a result set to CSV format with an accompanying metadata JSON file.
//
// Defaults to the set's label as the base filename & creates {base}_movies.csv and {base}_metadata.json
func WriteCSVExport(set *models.ResultSet, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = set.Label
	}

	csvData, err := ExportToCSV(set)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	moviesFile := baseFilepath + "_movies.csv"
	if err := os.WriteFile(moviesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(set)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		MoviesFile:   moviesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a result set to Markdown format in a dedicated directory.
//
// Directory name defaults to the set's label. When the first movie carries a
// poster URL, the poster is downloaded as the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(set *models.ResultSet, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = set.Label
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if len(set.Movies) > 0 && set.Movies[0].Image != "" {
		imageData, err := DownloadImage(set.Movies[0].Image)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(set, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a result set to plain text format.
//
// Defaults to {label}_movies.txt as the filename.
func WriteTextExport(set *models.ResultSet, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_movies.txt", set.Label)
	}

	textData, err := ExportToText(set)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
