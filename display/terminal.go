package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	So "github.com/W-Mai/simple-compose/obvy"
	Sy "github.com/W-Mai/simple-compose/player"
	Sp "github.com/W-Mai/simple-compose/plugin"
	Ss "github.com/W-Mai/simple-compose/score"
	Sm "github.com/W-Mai/simple-compose/theory"
	St "github.com/W-Mai/simple-compose/types"
	"github.com/gdamore/tcell/v2"
)

const (
	screenGutter = 3
	redrawEvery  = 100 * time.Millisecond
)

// View follows a playback as a player observer.
// It draws to Screen when there is one and feeds the HTTP endpoints either way.
type View struct {
	MU         sync.Mutex          // State locks to read data
	Screen     tcell.Screen        // the screen itself, nil when headless
	Stats      *So.StatsInternal   // Internal status for prometheus
	Supervisor *PlaybackSupervisor // Running playback, if any
	Output     string              // Output type shown in the header
	Port       string              // Output port name, when known
	out        Sp.OutputAdapter    // Output whose port name is shown
	server     *http.Server        // Metrics and status server
	state      St.PlayerState      // Last state the player reported
	held       [Sy.MaxChannels][128]bool
	ons        [Sy.MaxChannels]int
	offs       [Sy.MaxChannels]int
	fails      [Sy.MaxChannels]int
	events     int
	failures   int
	lastErr    string
	maxLate    time.Duration
	session    string
	lateness   string
}

// ChannelStatus is one MIDI channel as seen by the view.
type ChannelStatus struct {
	Channel  uint8    `json:"channel"`
	Held     []string `json:"held"`
	On       int      `json:"on"`
	Off      int      `json:"off"`
	Failures int      `json:"failures"`
}

// LiveData is the snapshot served on /api/status and /ws.
type LiveData struct {
	State     string          `json:"state"`
	Session   string          `json:"session,omitempty"`
	Output    string          `json:"output"`
	Port      string          `json:"port,omitempty"`
	Events    int             `json:"events"`
	Failures  int             `json:"failures"`
	LastError string          `json:"lastError,omitempty"`
	MaxLateMS float64         `json:"maxLatenessMs"`
	Lateness  string          `json:"lateness,omitempty"`
	Channels  []ChannelStatus `json:"channels"`
}

// NewView attaches a fresh prometheus registry. screen may be nil.
func NewView(screen tcell.Screen) *View {
	if screen != nil {
		defStyle := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorPink)
		screen.SetStyle(defStyle)
	}
	return &View{
		Screen: screen,
		Stats:  So.NewStatsInternal(),
	}
}

// EventDispatched tracks which keys each channel holds.
func (v *View) EventDispatched(ev St.TimedEvent, late time.Duration, err error) {
	v.MU.Lock()
	defer v.MU.Unlock()

	ch := ev.Channel & 0x0f
	v.events++
	if late > v.maxLate {
		v.maxLate = late
	}
	if err != nil {
		v.failures++
		v.fails[ch]++
		v.lastErr = err.Error()
		return
	}
	for _, key := range ev.Pitches {
		v.held[ch][key&0x7f] = ev.On
	}
	if ev.On {
		v.ons[ch]++
	} else {
		v.offs[ch]++
	}
}

// StateChanged starts a fresh tally when a new playback is scheduled.
func (v *View) StateChanged(state St.PlayerState) {
	var port string
	if state == St.Connected {
		v.MU.Lock()
		out := v.out
		v.MU.Unlock()
		port = portName(out)
	}

	v.MU.Lock()
	defer v.MU.Unlock()

	switch state {
	case St.Connected:
		v.Port = port
	case St.Scheduled:
		v.reset()
	case St.Closed:
		v.held = [Sy.MaxChannels][128]bool{}
	}
	v.state = state
}

// reset needs MU held.
func (v *View) reset() {
	v.held = [Sy.MaxChannels][128]bool{}
	v.ons = [Sy.MaxChannels]int{}
	v.offs = [Sy.MaxChannels]int{}
	v.fails = [Sy.MaxChannels]int{}
	v.events, v.failures, v.maxLate = 0, 0, 0
	v.lastErr, v.session, v.lateness = "", "", ""
}

// finish records what the report knows and the observer calls do not.
func (v *View) finish(rep Sy.Report, err error) {
	v.MU.Lock()
	defer v.MU.Unlock()
	v.session = rep.Session.String()
	if rep.Lateness.Count > 0 {
		v.lateness = rep.Lateness.String()
	}
	if err != nil {
		v.lastErr = err.Error()
	}
}

// GetLiveData copies the view state under lock.
func (v *View) GetLiveData() LiveData {
	v.MU.Lock()
	defer v.MU.Unlock()

	data := LiveData{
		State:     v.state.String(),
		Session:   v.session,
		Output:    v.Output,
		Port:      v.Port,
		Events:    v.events,
		Failures:  v.failures,
		LastError: v.lastErr,
		MaxLateMS: float64(v.maxLate) / float64(time.Millisecond),
		Lateness:  v.lateness,
		Channels:  make([]ChannelStatus, 0, Sy.MaxChannels),
	}
	for ch := range Sy.MaxChannels {
		data.Channels = append(data.Channels, ChannelStatus{
			Channel:  uint8(ch),
			Held:     heldNames(v.held[ch]),
			On:       v.ons[ch],
			Off:      v.offs[ch],
			Failures: v.fails[ch],
		})
	}
	return data
}

// KeyName spells a MIDI key in sharps, 60 is "C4".
func KeyName(key uint8) string {
	return Sm.NewTuning(Sm.C, -1).Transpose(int(key)).Name()
}

func heldNames(keys [128]bool) []string {
	names := []string{}
	for key, on := range keys {
		if on {
			names = append(names, KeyName(uint8(key)))
		}
	}
	return names
}

// DrawText displays the text string at the given (x1, y1) with box size (x2, y2)
func (v *View) DrawText(x1, y1, x2, y2 int, text string) {
	v.drawStyled(x1, y1, x2, y2, text, tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightSteelBlue))
}

func (v *View) drawStyled(x1, y1, x2, y2 int, text string, style tcell.Style) {
	row := y1
	col := x1
	for _, r := range text {
		v.Screen.SetContent(col, row, r, nil, style)
		col++
		if col >= x2 {
			row++
			col = x1
		}
		if row > y2 {
			break
		}
	}
}

// DrawViewBorder displays the outline of the View
func (v *View) DrawViewBorder(width, height int) {
	hvStyle := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorPink)
	v.Screen.SetContent(0, 0, tcell.RuneULCorner, nil, hvStyle)
	v.Screen.SetContent(width, 0, tcell.RuneURCorner, nil, hvStyle)
	v.Screen.SetContent(0, height, tcell.RuneLLCorner, nil, hvStyle)
	v.Screen.SetContent(width, height, tcell.RuneLRCorner, nil, hvStyle)
	for i := 1; i < width; i++ {
		v.Screen.SetContent(i, 0, tcell.RuneHLine, nil, hvStyle)
		v.Screen.SetContent(i, height, tcell.RuneHLine, nil, hvStyle)
	}
	for i := 1; i < height; i++ {
		v.Screen.SetContent(0, i, tcell.RuneVLine, nil, hvStyle)
		v.Screen.SetContent(width, i, tcell.RuneVLine, nil, hvStyle)
	}
}

// DrawMonitor draws the header and one row per channel.
// Channels with held keys get a bar as wide as the chord.
func (v *View) DrawMonitor() {
	data := v.GetLiveData()
	width, height := v.GetScreenSize()

	v.DrawViewBorder(width-1, height-1)

	output := data.Output
	if data.Port != "" {
		output += " " + data.Port
	}
	v.DrawText(2, 1, width-2, 1, fmt.Sprintf("state: %s | output: %s", data.State, output))
	v.DrawText(2, 2, width-2, 2, fmt.Sprintf("events: %d | failures: %d | max late: %.1fms",
		data.Events, data.Failures, data.MaxLateMS))

	barStyle := tcell.StyleDefault.Background(tcell.ColorDarkCyan)
	for _, cs := range data.Channels {
		y := screenGutter + 1 + int(cs.Channel)
		if y >= height-3 {
			break
		}
		label := fmt.Sprintf("ch %2d  on %4d  off %4d", cs.Channel+1, cs.On, cs.Off)
		if cs.Failures > 0 {
			label += "  fail " + strconv.Itoa(cs.Failures)
		}
		v.DrawText(2, y, width-2, y, label)

		x := 2 + len(label) + 2
		if len(cs.Held) > 0 {
			WriteBar(v.Screen, x, y, x+len(cs.Held), y+1, barStyle)
			v.DrawText(x+len(cs.Held)+1, y, width-2, y, strings.Join(cs.Held, " "))
		}
	}

	if data.LastError != "" {
		v.drawStyled(2, height-3, width-2, height-3, data.LastError,
			tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorRed))
	}
	if data.Session != "" {
		v.DrawText(2, height-4, width-2, height-4, "session "+data.Session)
	}

	v.DrawText(1, height-1, width, height+10, "/q/ or /ESC/ to stop")
	v.DrawText(width-16, height-1, width, height+10, "SIMPLE-COMPOSE")
}

// Running Loop to handle events
func (v *View) handleKeyBoardEvent() {
	for {
		ev := v.Screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			// Screen finalized
			return
		case *tcell.EventResize:
			v.ResizeScreen()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				slog.Info("Stop requested from monitor")
				v.MU.Lock()
				ps := v.Supervisor
				v.MU.Unlock()
				if ps != nil {
					ps.Cancel()
				}
			}
		}
	}
}

// GetScreenSize provides the terminal size for drawing
func (v *View) GetScreenSize() (int, int) {
	width, height := v.Screen.Size()
	return width, height
}

// ResizeScreen redraws after terminal changes
func (v *View) ResizeScreen() {
	v.Screen.Sync()
	v.UpdateScreen()
}

func (v *View) UpdateScreen() {
	if v.Screen == nil {
		return
	}
	v.Screen.Clear()
	v.DrawMonitor()
	v.Screen.Show()
}

// run redraws until stop is closed.
func (v *View) run(stop <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in run loop", slog.Any("panic", r))
			slog.Error("Recovered from panic", slog.String("stack", string(debug.Stack())))
		}
	}()

	ticker := time.NewTicker(redrawEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			v.UpdateScreen()
		case <-stop:
			v.UpdateScreen()
			return
		}
	}
}

// RespWriter is a wrapper with StatsMiddleware, used for Prometheus
type RespWriter struct {
	http.ResponseWriter
	Status int
}

// WriteHeader is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

// Write is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) Write(b []byte) (int, error) {
	return w.ResponseWriter.Write(b)
}

func (v *View) StatsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &RespWriter{
			ResponseWriter: w,
			Status:         200,
		}
		next.ServeHTTP(wrapped, r)
		v.Stats.RecWWW(strconv.Itoa(wrapped.Status), r.Method)
	})
}

// StartMonitor plays s on p while drawing the monitor on screen.
// It returns when playback ends or the user stops it, and finalizes the screen.
// A non-empty addr also serves the HTTP endpoints for the length of the playback.
func StartMonitor(ctx context.Context, screen tcell.Screen, p *Sy.Player, s *Ss.Score, addr string) (Sy.Report, error) {
	if screen == nil {
		return Sy.Report{}, errors.New("monitor needs a screen")
	}
	defer screen.Fini()

	view := NewView(screen)
	view.describeOutput(p)
	ps := view.NewPlaybackSupervisor(p)

	if addr != "" {
		go view.ListenAndServe(view.NewServer(addr))
		defer view.Shutdown(context.Background())
	}

	stop := make(chan struct{})
	var drawing sync.WaitGroup
	drawing.Add(1)
	go func() {
		defer drawing.Done()
		view.run(stop)
	}()
	go view.handleKeyBoardEvent()

	ps.Start(ctx, s)
	rep, err := ps.Wait()
	close(stop)
	drawing.Wait()
	return rep, err
}

// StartWebNoTUI plays s on p with only the HTTP endpoints attached.
func StartWebNoTUI(ctx context.Context, p *Sy.Player, s *Ss.Score, addr string) (Sy.Report, error) {
	view := NewView(nil)
	view.describeOutput(p)
	ps := view.NewPlaybackSupervisor(p)

	go view.ListenAndServe(view.NewServer(addr))
	defer view.Shutdown(context.Background())

	ps.Start(ctx, s)
	return ps.Wait()
}

func (v *View) describeOutput(p *Sy.Player) {
	if p == nil || p.Out == nil {
		return
	}
	v.MU.Lock()
	defer v.MU.Unlock()
	v.Output = p.Out.Type()
	v.out = p.Out
}
