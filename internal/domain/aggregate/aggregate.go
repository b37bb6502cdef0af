// Package aggregate derives community selection statistics from submissions.
package aggregate

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/fplpicks/internal/domain/catalog"
	"github.com/okian/fplpicks/internal/domain/gate"
	"github.com/okian/fplpicks/pkg/metrics"
)

const (
	benchSize      = 4
	topCaptainsLen = 5
)

// Formation is the number of starters per position in the most popular XI.
var Formation = map[catalog.Position]int{ //nolint:gochecknoglobals // fixed 1-4-4-2
	catalog.Goalkeeper: 1,
	catalog.Defender:   4,
	catalog.Midfielder: 4,
	catalog.Forward:    2,
}

// PlayerStat is how often one player was picked.
type PlayerStat struct {
	Player            catalog.Player `json:"player"`
	Selections        int            `json:"selections"`
	Percentage        float64        `json:"percentage"`
	Captain           int            `json:"captain"`
	CaptainPercentage float64        `json:"captain_percentage"`
	ViceCaptain       int            `json:"vice_captain"`
}

// Bucket counts players whose ownership falls in [Min, Max). The top bucket
// includes 100.
type Bucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// Stats is the full community view.
type Stats struct {
	Submissions        int                               `json:"submissions"`
	Players            []PlayerStat                      `json:"players"`
	TopCaptains        []PlayerStat                      `json:"top_captains"`
	XI                 map[catalog.Position][]PlayerStat `json:"xi"`
	Bench              []PlayerStat                      `json:"bench"`
	Buckets            []Bucket                          `json:"buckets"`
	AverageXIOwnership float64                           `json:"average_xi_ownership"`
	TemplateCost       catalog.Price                     `json:"template_cost"`
}

// Lookup returns the stat line for a player id. Players never picked get a
// zero line.
func (s Stats) Lookup(id int) PlayerStat {
	for _, ps := range s.Players {
		if ps.Player.ID == id {
			return ps
		}
	}
	return PlayerStat{Player: catalog.Player{ID: id}}
}

func buckets() []Bucket {
	return []Bucket{
		{Label: "80%+", Min: 80, Max: 100},
		{Label: "50-79%", Min: 50, Max: 80},
		{Label: "20-49%", Min: 20, Max: 50},
		{Label: "0-19%", Min: 0, Max: 20},
	}
}

// Compute aggregates subs. Players are visited in ascending id order and all
// sorts are stable, so ties resolve to the lower id.
func Compute(subs []gate.Submission) Stats {
	start := time.Now()
	defer func() {
		metrics.RecordAggregationLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	byID := make(map[int]*PlayerStat)
	for _, s := range subs {
		for _, p := range s.Players {
			ps, ok := byID[p.ID]
			if !ok {
				ps = &PlayerStat{Player: p}
				byID[p.ID] = ps
			}
			ps.Selections++
		}
		if ps, ok := byID[s.CaptainID]; ok {
			ps.Captain++
		}
		if ps, ok := byID[s.ViceCaptainID]; ok && s.ViceCaptainID != 0 {
			ps.ViceCaptain++
		}
	}

	n := len(subs)
	players := make([]PlayerStat, 0, len(byID))
	for _, ps := range byID {
		if n > 0 {
			ps.Percentage = float64(ps.Selections) / float64(n) * 100
			ps.CaptainPercentage = float64(ps.Captain) / float64(n) * 100
		}
		players = append(players, *ps)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Player.ID < players[j].Player.ID })
	sort.SliceStable(players, func(i, j int) bool { return players[i].Selections > players[j].Selections })

	out := Stats{
		Submissions: n,
		Players:     players,
		TopCaptains: topCaptains(players),
		XI:          make(map[catalog.Position][]PlayerStat, len(Formation)),
		Bench:       []PlayerStat{},
		Buckets:     buckets(),
	}

	inXI := make(map[int]struct{})
	var xiOwnership []float64
	for _, pos := range catalog.Positions {
		picked := []PlayerStat{}
		for _, ps := range players {
			if len(picked) == Formation[pos] {
				break
			}
			if ps.Player.Position == pos {
				picked = append(picked, ps)
				inXI[ps.Player.ID] = struct{}{}
				xiOwnership = append(xiOwnership, ps.Percentage)
				out.TemplateCost += ps.Player.Price
			}
		}
		out.XI[pos] = picked
	}
	if len(xiOwnership) > 0 {
		out.AverageXIOwnership = stat.Mean(xiOwnership, nil)
	}

	for _, ps := range players {
		if len(out.Bench) == benchSize {
			break
		}
		if _, ok := inXI[ps.Player.ID]; !ok {
			out.Bench = append(out.Bench, ps)
		}
	}

	for _, ps := range players {
		for i := range out.Buckets {
			b := &out.Buckets[i]
			if ps.Percentage >= b.Min && (ps.Percentage < b.Max || b.Max == 100) {
				b.Count++
				break
			}
		}
	}
	if len(players) > 0 {
		for i := range out.Buckets {
			out.Buckets[i].Share = float64(out.Buckets[i].Count) / float64(len(players)) * 100
		}
	}
	return out
}

func topCaptains(players []PlayerStat) []PlayerStat {
	byCaptain := make([]PlayerStat, len(players))
	copy(byCaptain, players)
	sort.Slice(byCaptain, func(i, j int) bool { return byCaptain[i].Player.ID < byCaptain[j].Player.ID })
	sort.SliceStable(byCaptain, func(i, j int) bool { return byCaptain[i].Captain > byCaptain[j].Captain })

	out := make([]PlayerStat, 0, topCaptainsLen)
	for _, ps := range byCaptain {
		if ps.Captain == 0 || len(out) == topCaptainsLen {
			break
		}
		out = append(out, ps)
	}
	return out
}
