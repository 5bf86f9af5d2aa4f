package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/ferntree/marquee/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	return fmt.Sprintf("%s  ★ %.1f", i.movie.Title, i.movie.Rating)
}
func (i movieItem) Description() string { return i.movie.Description }

func movieItems(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, movie := range movies {
		items[i] = movieItem{movie: movie}
	}
	return items
}
