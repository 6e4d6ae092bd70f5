package window

import "github.com/okian/stadiums/internal/domain/model"

// milli is one unit in thousandths.
const milli = 1000

// Fields tracked by a series, in sample order.
const (
	fieldWin = iota
	fieldLoss
	fieldTie
	fieldMOV
	fieldError
	numFields
)

// sample is one row fed into a series, in thousandths. ok is false for gap
// weeks.
type sample struct {
	v  [numFields]int64
	ok bool
}

func observed(win, loss, tie int, mov, errv float64) sample {
	return sample{
		v: [numFields]int64{
			model.Milli(float64(win)), model.Milli(float64(loss)), model.Milli(float64(tie)),
			model.Milli(mov), model.Milli(errv),
		},
		ok: true,
	}
}

// series keeps running sums over the last size rows, or over every row when
// size is zero. Gap rows occupy a slot but contribute nothing. Sums are
// integer thousandths so adding and evicting rows never drifts.
type series struct {
	size       int
	minPeriods int
	ring       []sample
	next       int
	filled     int
	count      int
	sum        [numFields]int64
}

func newSeries(w model.Window, minPeriods int) *series {
	s := &series{minPeriods: minPeriods}
	if !w.Expanding() {
		s.size = w.Size
		s.ring = make([]sample, w.Size)
	}
	if s.minPeriods < 1 {
		s.minPeriods = 1
	}
	return s
}

func (s *series) push(x sample) {
	if s.size > 0 {
		if s.filled == s.size {
			s.drop(s.ring[s.next])
		} else {
			s.filled++
		}
		s.ring[s.next] = x
		s.next = (s.next + 1) % s.size
	}
	if x.ok {
		s.count++
		for i := range s.sum {
			s.sum[i] += x.v[i]
		}
	}
}

func (s *series) drop(old sample) {
	if !old.ok {
		return
	}
	s.count--
	for i := range s.sum {
		s.sum[i] -= old.v[i]
	}
}

// stats returns the current window aggregates, all nil until minPeriods
// non-gap rows are inside the window.
func (s *series) stats() model.WindowStats {
	if s.count < s.minPeriods {
		return model.WindowStats{}
	}
	return model.WindowStats{
		Wins:   intPtr(int(s.sum[fieldWin] / milli)),
		Losses: intPtr(int(s.sum[fieldLoss] / milli)),
		Ties:   intPtr(int(s.sum[fieldTie] / milli)),
		MOV:    floatPtr(model.MeanMilli(s.sum[fieldMOV], s.count)),
		HFA:    floatPtr(model.MeanMilli(s.sum[fieldError], s.count)),
	}
}

// windowSet feeds one sample to every configured window.
type windowSet []*series

func newWindowSet(windows []model.Window, trailingMinPeriods func(model.Window) int) windowSet {
	set := make(windowSet, len(windows))
	for i, w := range windows {
		set[i] = newSeries(w, trailingMinPeriods(w))
	}
	return set
}

func (ws windowSet) push(x sample) []model.WindowStats {
	out := make([]model.WindowStats, len(ws))
	for i, s := range ws {
		s.push(x)
		out[i] = s.stats()
	}
	return out
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
