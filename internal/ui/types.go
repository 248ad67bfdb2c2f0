package ui

import (
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/drywaters/tasbih/internal/slideshow"
	"github.com/drywaters/tasbih/internal/tasbih"
)

const (
	Title    = "Digital Tasbih"
	Subtitle = "A simple, beautiful tasbih counter for dhikr"
)

// DhikrOption is one entry in the dhikr selector
type DhikrOption struct {
	tasbih.Dhikr
	Selected bool
}

// SlideView describes the slideshow area
type SlideView struct {
	Enabled       bool
	Index         int
	Number        int
	Total         int
	Name          string
	ImageURL      string
	Error         string
	Autoplay      bool
	AutoplayEvery string
	AutoplayLabel string
}

// PageView is everything the counter page shows for one session
type PageView struct {
	Title             string
	Subtitle          string
	Dhikrs            []DhikrOption
	Current           tasbih.Dhikr
	Count             int
	TotalCount        int
	Goal              int
	Progress          int
	ChallengeComplete bool
	Slideshow         SlideView
	LoginEnabled      bool
}

// Options carries server settings that affect the view
type Options struct {
	AutoplayInterval time.Duration
	LoginEnabled     bool
}

// NewPageView derives the view from session state. slideErr is the load
// error for the current slide, if any.
func NewPageView(state tasbih.State, images *slideshow.ImageSet, opts Options, slideErr error) PageView {
	current := state.CurrentDhikr()

	catalog := tasbih.Catalog()
	options := make([]DhikrOption, 0, len(catalog))
	for _, d := range catalog {
		options = append(options, DhikrOption{Dhikr: d, Selected: d.Phrase == current.Phrase})
	}

	view := PageView{
		Title:             Title,
		Subtitle:          Subtitle,
		Dhikrs:            options,
		Current:           current,
		Count:             state.Count,
		TotalCount:        state.TotalCount,
		Goal:              tasbih.ChallengeGoal,
		Progress:          ProgressPercent(state.Count, tasbih.ChallengeGoal),
		ChallengeComplete: state.ChallengeComplete(),
		LoginEnabled:      opts.LoginEnabled,
	}

	if images.Empty() {
		return view
	}

	index := state.Slide(images.Len())
	path, _ := images.At(index)
	name := filepath.Base(path)
	view.Slideshow = SlideView{
		Enabled:       true,
		Index:         index,
		Number:        index + 1,
		Total:         images.Len(),
		Name:          name,
		ImageURL:      "/slides/" + strconv.Itoa(index) + "/image?v=" + url.QueryEscape(name),
		Autoplay:      state.Autoplay,
		AutoplayEvery: HTMXInterval(opts.AutoplayInterval),
		AutoplayLabel: IntervalLabel(opts.AutoplayInterval),
	}
	if slideErr != nil {
		view.Slideshow.Error = slideErr.Error()
	}
	return view
}

// LoginView is the data for the login page
type LoginView struct {
	Title string
	Error string
}
