package virtual

import (
	"math"

	"github.com/go-logr/logr"
)

const (
	// DefaultRowHeight is the uniform row height estimate.
	DefaultRowHeight = 30.5
	// DefaultBufferSize is the number of extra rows rendered past the viewport.
	DefaultBufferSize = 5
	// DefaultThresholdRows is how close (in rows) the viewport bottom must be to
	// the rendered bottom before the rendered window grows.
	DefaultThresholdRows = 10
	// DefaultLoadMoreOffset is the pixel distance from the end of the data
	// that triggers a load-more request.
	DefaultLoadMoreOffset = 20
)

// Mode selects the virtualization discipline.
type Mode int

const (
	// ModeNone renders every row.
	ModeNone Mode = iota
	// ModeViewport renders from row 0 and grows the window as the user scrolls.
	ModeViewport
	// ModeVirtual renders only the rows around the viewport.
	ModeVirtual
)

// ParseMode resolves "none", "viewport" or "vertical"/"virtual".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "none":
		return ModeNone, true
	case "viewport":
		return ModeViewport, true
	case "vertical", "virtual":
		return ModeVirtual, true
	}
	return ModeNone, false
}

func (m Mode) String() string {
	switch m {
	case ModeViewport:
		return "viewport"
	case ModeVirtual:
		return "vertical"
	}
	return "none"
}

// Config tunes a Window.
type Config struct {
	RowHeight  float64
	BufferSize int
	// FixedHeight skips per-row measurement: every row is RowHeight tall.
	FixedHeight     bool
	Mode            Mode
	ThresholdRows   int
	LoadMoreOffset  float64
	InfiniteLoading bool
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		RowHeight:      DefaultRowHeight,
		BufferSize:     DefaultBufferSize,
		Mode:           ModeVirtual,
		ThresholdRows:  DefaultThresholdRows,
		LoadMoreOffset: DefaultLoadMoreOffset,
	}
}

// Normalize replaces invalid values with defaults and reports each fix.
func (c Config) Normalize() (Config, []string) {
	var warnings []string
	if !validHeight(c.RowHeight) {
		warnings = append(warnings, "invalid row height, using default")
		c.RowHeight = DefaultRowHeight
	}
	if c.BufferSize < 0 {
		warnings = append(warnings, "negative buffer size, using default")
		c.BufferSize = DefaultBufferSize
	}
	if c.ThresholdRows <= 0 {
		c.ThresholdRows = DefaultThresholdRows
	}
	if c.LoadMoreOffset < 0 || math.IsNaN(c.LoadMoreOffset) {
		warnings = append(warnings, "negative load-more offset, using default")
		c.LoadMoreOffset = DefaultLoadMoreOffset
	}
	return c, warnings
}

// Span is an inclusive range of row indices to materialize. An empty span has
// First 0 and Last -1.
type Span struct {
	First int
	Last  int
}

// Len returns the number of rows in the span.
func (s Span) Len() int {
	return s.Last - s.First + 1
}

// Contains reports whether index is inside the span.
func (s Span) Contains(index int) bool {
	return index >= s.First && index <= s.Last
}

// ScrollResult is what OnScroll decided.
type ScrollResult struct {
	FirstVisible int
	Span         Span
	// Extended is set when the rendered window grew.
	Extended bool
	// LoadMore asks the host to fetch more data.
	LoadMore bool
}

type renderCache struct {
	renderedRowCount int
	totalRowCount    int
	firstRowKey      string
}

// Window tracks the rendered row window of one grid.
type Window struct {
	cfg   Config
	index *OffsetIndex
	log   logr.Logger

	viewportHeight float64
	scrollTop      float64
	firstVisible   int
	renderedCount  int
	loading        bool
	prev           renderCache
}

// NewWindow returns a window for an empty data set.
func NewWindow(cfg Config, log logr.Logger) *Window {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	cfg, warnings := cfg.Normalize()
	for _, w := range warnings {
		log.Info(w)
	}
	return &Window{
		cfg:   cfg,
		index: NewOffsetIndex(cfg.RowHeight, 0),
		log:   log,
	}
}

// Config returns the normalized configuration.
func (w *Window) Config() Config { return w.cfg }

// Index returns the offset index the window owns.
func (w *Window) Index() *OffsetIndex { return w.index }

// ScrollTop returns the last scroll position seen.
func (w *Window) ScrollTop() float64 { return w.scrollTop }

// FirstVisible returns the index of the row at the top of the viewport.
func (w *Window) FirstVisible() int { return w.firstVisible }

// RenderedCount returns the incremental rendered row count.
func (w *Window) RenderedCount() int { return w.renderedCount }

// ViewportHeight returns the last height set.
func (w *Window) ViewportHeight() float64 { return w.viewportHeight }

// SetViewportHeight records the height of the scrollable area.
func (w *Window) SetViewportHeight(h float64) {
	if math.IsNaN(h) || h < 0 {
		h = 0
	}
	w.viewportHeight = h
}

// SetLoading marks whether the host is fetching more data.
func (w *Window) SetLoading(loading bool) { w.loading = loading }

// Loading reports whether a fetch is in progress.
func (w *Window) Loading() bool { return w.loading }

// RowCountInViewport is the number of uniform rows that fill the viewport.
func (w *Window) RowCountInViewport() int {
	return int(math.Ceil(w.viewportHeight / w.cfg.RowHeight))
}

// RowCountWithBuffer is the viewport row count plus the buffer, doubled for
// vertical virtualization where the buffer applies on both sides.
func (w *Window) RowCountWithBuffer() int {
	buffer := w.cfg.BufferSize
	if w.cfg.Mode == ModeVirtual {
		buffer *= 2
	}
	return w.RowCountInViewport() + buffer
}

func (w *Window) threshold() float64 {
	return float64(w.cfg.ThresholdRows) * w.cfg.RowHeight
}

// UpdateRenderedCount reconciles the window with a new data set. A changed
// first-row key (or force) means the data was replaced: measurements are
// dropped and the window resets to one viewport batch. Growth near the
// rendered bottom extends the window by another batch instead.
func (w *Window) UpdateRenderedCount(total int, firstKey string, force bool) {
	total = max(total, 0)
	replaced := force || firstKey != w.prev.firstRowKey || w.prev.totalRowCount == 0
	switch {
	case replaced:
		w.index.Reset(total)
		first, _ := w.index.FindRowAtScrollPosition(w.scrollTop)
		w.firstVisible = max(first, 0)
		w.renderedCount = w.RowCountWithBuffer()
		if w.cfg.Mode == ModeViewport {
			w.renderedCount += w.firstVisible
		}
	case total > w.prev.totalRowCount && w.nearRenderedBottom():
		w.index.SetRowCount(total)
		w.renderedCount = w.prev.renderedRowCount + w.RowCountWithBuffer()
	default:
		w.index.SetRowCount(total)
		w.renderedCount = w.prev.renderedRowCount
	}
	w.renderedCount = min(w.renderedCount, total)
	if w.firstVisible >= total {
		w.firstVisible = max(total-1, 0)
	}
	w.log.V(1).Info("rendered count updated", "total", total, "rendered", w.renderedCount, "replaced", replaced)
	w.prev = renderCache{
		renderedRowCount: w.renderedCount,
		totalRowCount:    total,
		firstRowKey:      firstKey,
	}
}

func (w *Window) nearRenderedBottom() bool {
	renderedBottom := w.index.Offset(w.renderedCount)
	return renderedBottom-(w.scrollTop+w.viewportHeight) <= w.threshold()
}

// OnScroll moves the window to scrollTop.
func (w *Window) OnScroll(scrollTop float64) ScrollResult {
	if math.IsNaN(scrollTop) || scrollTop < 0 {
		scrollTop = 0
	}
	w.scrollTop = scrollTop
	total := w.index.RowCount()
	first, _ := w.index.FindRowAtScrollPosition(scrollTop)
	w.firstVisible = max(first, 0)

	var res ScrollResult
	if w.cfg.Mode == ModeViewport && w.renderedCount < total && w.nearRenderedBottom() {
		w.renderedCount = min(total, w.renderedCount+w.RowCountWithBuffer())
		w.prev.renderedRowCount = w.renderedCount
		res.Extended = true
	}
	if w.cfg.InfiniteLoading && !w.loading {
		remaining := w.index.TotalHeight() - (scrollTop + w.viewportHeight)
		res.LoadMore = remaining <= w.cfg.LoadMoreOffset
	}
	res.FirstVisible = w.firstVisible
	res.Span = w.ComputeRenderedRange()
	return res
}

// Prefetch reports whether more data should be requested because the current
// rows do not fill the viewport.
func (w *Window) Prefetch() bool {
	return w.cfg.InfiniteLoading && !w.loading && w.viewportHeight > 0 &&
		w.index.TotalHeight() <= w.viewportHeight
}

// ComputeRenderedRange returns the rows to materialize.
func (w *Window) ComputeRenderedRange() Span {
	total := w.index.RowCount()
	if total == 0 {
		return Span{First: 0, Last: -1}
	}
	switch w.cfg.Mode {
	case ModeNone:
		return Span{First: 0, Last: total - 1}
	case ModeViewport:
		n := max(min(w.renderedCount, total), min(total, 1))
		return Span{First: 0, Last: n - 1}
	}

	buffer := w.cfg.BufferSize
	first := min(max(w.firstVisible, 0), total-1)
	var lastVisible int
	if w.cfg.FixedHeight {
		lastVisible = first + max(w.RowCountInViewport(), 1) - 1
	} else {
		bottom := w.scrollTop + w.viewportHeight
		lastVisible = first
		for lastVisible < total-1 && w.index.Offset(lastVisible+1) < bottom {
			lastVisible++
		}
	}
	return Span{
		First: max(first-buffer, 0),
		Last:  min(lastVisible+buffer, total-1),
	}
}
