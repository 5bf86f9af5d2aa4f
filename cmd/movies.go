package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ferntree/marquee/internal/formatter"
	"github.com/ferntree/marquee/internal/models"
	"github.com/ferntree/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// MoviesRecommended lists the recommended movies for the signed-in user.
func (r *Runner) MoviesRecommended(ctx context.Context, cmd *cli.Command) error {
	if err := r.rehydrate(ctx); err != nil {
		return err
	}

	movies, err := r.catalog.Recommended(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch recommended movies: %w", err)
	}

	return r.renderMovies(cmd, models.Recommended(movies))
}

// MoviesCategories lists the available categories.
func (r *Runner) MoviesCategories(ctx context.Context, cmd *cli.Command) error {
	if err := r.rehydrate(ctx); err != nil {
		return err
	}

	categories, err := r.catalog.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch categories: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(categories, true)
	}

	r.writePlain("Categories (%d):\n", len(categories))
	for _, category := range categories {
		r.writePlain("  %s  %s\n", category.ID, category.Name)
	}
	return nil
}

// MoviesCategory lists the movies filed under the given category id.
func (r *Runner) MoviesCategory(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: category id", shared.ErrMissingArgument)
	}

	if err := r.rehydrate(ctx); err != nil {
		return err
	}

	movies, err := r.catalog.MoviesByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch category %q: %w", id, err)
	}

	return r.renderMovies(cmd, models.ByCategory(r.categoryName(ctx, id), movies))
}

// categoryName resolves a category id to its display name, so result set
// labels read category:<name>. Falls back to the id when the list cannot be
// fetched or the id is unknown.
func (r *Runner) categoryName(ctx context.Context, id string) string {
	categories, err := r.catalog.Categories(ctx)
	if err != nil {
		return id
	}
	for _, category := range categories {
		if category.ID == id {
			return category.Name
		}
	}
	return id
}

// MoviesSearch searches the catalog by title.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	if err := r.rehydrate(ctx); err != nil {
		return err
	}

	movies, err := r.catalog.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search %q failed: %w", query, err)
	}

	return r.renderMovies(cmd, models.FromSearch(query, movies))
}

// RateMovie submits a rating in [1,5] for a movie.
func (r *Runner) RateMovie(ctx context.Context, cmd *cli.Command) error {
	movieID := cmd.StringArg("movie")
	ratingArg := cmd.StringArg("rating")

	if movieID == "" || ratingArg == "" {
		return fmt.Errorf("%w: usage: marquee rate <movie-id> <rating>", shared.ErrMissingArgument)
	}

	rating, err := strconv.Atoi(ratingArg)
	if err != nil {
		return fmt.Errorf("%w: rating must be a number from 1 to 5", shared.ErrInvalidArgument)
	}

	if err := r.rehydrate(ctx); err != nil {
		return err
	}

	identity, ok := r.store.Current()
	if !ok {
		return shared.ErrNotAuthenticated
	}

	if err := r.catalog.Rate(ctx, identity.ID, movieID, rating); err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}

	return r.writePlain("✓ Rated %s %d/5\n", movieID, rating)
}

// renderMovies prints a result set according to the output flags: an export
// format writes files via the formatter, --json prints the raw list, and the
// default is a plain table.
func (r *Runner) renderMovies(cmd *cli.Command, set models.ResultSet) error {
	switch format := cmd.String("format"); format {
	case "":
	case "csv":
		result, err := formatter.WriteCSVExport(&set, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %s and %s\n", result.MoviesFile, result.MetadataFile)
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(&set, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %s\n", strings.Join(result.Files, ", "))
	case "text", "txt":
		path, err := formatter.WriteTextExport(&set, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %s\n", path)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	if cmd.Bool("json") {
		return r.writeJSON(set.Movies, cmd.Bool("pretty"))
	}

	r.writePlain("%s (%d movies)\n", set.Label, len(set.Movies))
	for _, movie := range set.Movies {
		r.writePlain("  %-12s %-40s ★ %.1f\n", movie.ID, movie.Title, movie.Rating)
	}
	return nil
}
