package availability

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"courtside/models"
	"courtside/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Key identifies one court day.
type Key struct {
	CourtID string
	Date    string
}

func (k Key) String() string {
	return k.CourtID + "/" + k.Date
}

// Entry is a maximal run of cells sharing the same state.
type Entry struct {
	models.Interval
	Status models.SlotStatus `json:"status"`
	Owner  string            `json:"owner,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

// HoldToken identifies a provisional claim returned by Hold.
type HoldToken string

// cell is one step-sized unit of a court day. Cells are locked individually,
// always in ascending order, so overlapping operations serialise and
// disjoint ones do not.
type cell struct {
	mu        sync.Mutex
	status    models.SlotStatus
	owner     string // booking ID, hold token or block ID
	holder    string
	expiresAt time.Time
	reason    string
}

func (c *cell) reset() {
	c.status = models.SlotFree
	c.owner = ""
	c.holder = ""
	c.reason = ""
	c.expiresAt = time.Time{}
}

// expire frees a lapsed hold. The caller holds c.mu.
func (c *cell) expire(now time.Time) {
	if c.status == models.SlotHeld && !now.Before(c.expiresAt) {
		c.reset()
	}
}

type day struct {
	cells []*cell
}

type holdState int

const (
	holdActive holdState = iota
	holdCommitting
	holdExpired
)

type hold struct {
	key         Key
	iv          models.Interval
	holder      string
	ttl         time.Duration
	expiresAt   time.Time
	state       holdState
	retainUntil time.Time
}

// Index is the in-memory availability state of every loaded court day.
// The hold registry has its own mutex which is never held while cells are locked.
type Index struct {
	step   models.Minute
	clock  utils.Clock
	logger *zap.Logger

	mu   sync.RWMutex
	days map[Key]*day

	holdsMu sync.Mutex
	holds   map[HoldToken]*hold
	retired map[string]time.Time // booking IDs being rolled back, until the given time
	closed  map[string]bool      // court IDs refusing new holds
}

// retireFor bounds how long a rolled back booking ID is ignored by Restore.
const retireFor = 10 * time.Minute

// NewIndex creates an empty index whose cells are step minutes wide.
func NewIndex(step int, clock utils.Clock, logger *zap.Logger) (*Index, error) {
	if step <= 0 || int(models.MinutesPerDay)%step != 0 {
		return nil, fmt.Errorf("booking step %d must be positive and divide a day", step)
	}
	if clock == nil {
		clock = utils.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		step:    models.Minute(step),
		clock:   clock,
		logger:  logger,
		days:    make(map[Key]*day),
		holds:   make(map[HoldToken]*hold),
		retired: make(map[string]time.Time),
		closed:  make(map[string]bool),
	}, nil
}

// Step returns the cell width in minutes.
func (ix *Index) Step() int {
	return int(ix.step)
}

// Aligned reports whether iv is a non-empty interval on cell boundaries.
func (ix *Index) Aligned(iv models.Interval) bool {
	return iv.Valid() && iv.Start%ix.step == 0 && iv.End%ix.step == 0
}

func (ix *Index) day(key Key, create bool) *day {
	ix.mu.RLock()
	d := ix.days[key]
	ix.mu.RUnlock()
	if d != nil || !create {
		return d
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if d = ix.days[key]; d == nil {
		d = &day{cells: make([]*cell, int(models.MinutesPerDay/ix.step))}
		for i := range d.cells {
			d.cells[i] = &cell{status: models.SlotFree}
		}
		ix.days[key] = d
	}
	return d
}

// cellRange returns the cells covering iv, or nil when the day was never loaded.
func (ix *Index) cellRange(key Key, iv models.Interval, create bool) ([]*cell, error) {
	if !ix.Aligned(iv) {
		return nil, fmt.Errorf("%w: %s (step %d)", ErrMisaligned, iv, ix.step)
	}
	d := ix.day(key, create)
	if d == nil {
		return nil, nil
	}
	return d.cells[iv.Start/ix.step : iv.End/ix.step], nil
}

func lockCells(cells []*cell) {
	for _, c := range cells {
		c.mu.Lock()
	}
}

func unlockCells(cells []*cell) {
	for i := len(cells) - 1; i >= 0; i-- {
		cells[i].mu.Unlock()
	}
}

// collect merges consecutive cells with the same state. The caller holds every cell lock.
func (ix *Index) collect(cells []*cell, base models.Minute, includeFree bool) []Entry {
	var out []Entry
	for i, c := range cells {
		if c.status == models.SlotFree && !includeFree {
			continue
		}
		start := base + models.Minute(i)*ix.step
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.End == start && last.Status == c.status && last.Owner == c.owner && last.Reason == c.reason {
				last.End = start + ix.step
				continue
			}
		}
		out = append(out, Entry{
			Interval: models.Interval{Start: start, End: start + ix.step},
			Status:   c.status,
			Owner:    c.owner,
			Reason:   c.reason,
		})
	}
	return out
}

// Query returns nil when iv is entirely free, otherwise the entries overlapping it.
func (ix *Index) Query(key Key, iv models.Interval) ([]Entry, error) {
	cells, err := ix.cellRange(key, iv, false)
	if err != nil || cells == nil {
		return nil, err
	}
	lockCells(cells)
	defer unlockCells(cells)

	now := ix.clock.Now()
	for _, c := range cells {
		c.expire(now)
	}
	return ix.collect(cells, iv.Start, false), nil
}

func describe(entries []Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s %s", e.Interval, e.Status)
	}
	return strings.Join(parts, ", ")
}

// Hold claims every cell of iv for holder until ttl elapses. It is all or
// nothing: if any cell is not free, nothing changes and ErrBusy is returned.
func (ix *Index) Hold(key Key, iv models.Interval, holder string, ttl time.Duration) (HoldToken, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("hold ttl must be positive, got %s", ttl)
	}
	cells, err := ix.cellRange(key, iv, true)
	if err != nil {
		return "", err
	}

	token := HoldToken(uuid.NewString())
	lockCells(cells)
	now := ix.clock.Now()
	for _, c := range cells {
		c.expire(now)
	}
	if busy := ix.collect(cells, iv.Start, false); len(busy) > 0 {
		unlockCells(cells)
		return "", fmt.Errorf("%w: %s on %s", ErrBusy, describe(busy), key)
	}
	expiresAt := now.Add(ttl)
	for _, c := range cells {
		c.status = models.SlotHeld
		c.owner = string(token)
		c.holder = holder
		c.expiresAt = expiresAt
	}
	unlockCells(cells)

	ix.holdsMu.Lock()
	if ix.closed[key.CourtID] {
		ix.holdsMu.Unlock()
		ix.freeHeld(key, iv, token)
		return "", fmt.Errorf("%w: court %s", ErrClosed, key.CourtID)
	}
	ix.holds[token] = &hold{key: key, iv: iv, holder: holder, ttl: ttl, expiresAt: expiresAt}
	ix.holdsMu.Unlock()
	return token, nil
}

// Commit turns a live hold into a booking owned by bookingID.
// A hold that lapsed returns ErrExpired; an unknown or consumed token returns ErrInvalidToken.
func (ix *Index) Commit(token HoldToken, bookingID string) error {
	ix.holdsMu.Lock()
	h, ok := ix.holds[token]
	if !ok || h.state == holdCommitting {
		ix.holdsMu.Unlock()
		return ErrInvalidToken
	}
	if h.state == holdExpired || !ix.clock.Now().Before(h.expiresAt) {
		ix.tombstone(h)
		ix.holdsMu.Unlock()
		return ErrExpired
	}
	h.state = holdCommitting
	key, iv := h.key, h.iv
	ix.holdsMu.Unlock()

	committed := false
	cells, err := ix.cellRange(key, iv, false)
	if err == nil && cells != nil {
		lockCells(cells)
		now := ix.clock.Now()
		committed = true
		for _, c := range cells {
			if c.status != models.SlotHeld || c.owner != string(token) || !now.Before(c.expiresAt) {
				committed = false
				break
			}
		}
		for _, c := range cells {
			switch {
			case committed:
				c.status = models.SlotBooked
				c.owner = bookingID
				c.holder = ""
				c.expiresAt = time.Time{}
			case c.status == models.SlotHeld && c.owner == string(token):
				c.reset()
			}
		}
		unlockCells(cells)
	}

	ix.holdsMu.Lock()
	defer ix.holdsMu.Unlock()
	if committed {
		delete(ix.holds, token)
		return nil
	}
	ix.tombstone(h)
	return ErrExpired
}

// tombstone keeps an expired hold for one more ttl so late commits report
// ErrExpired rather than ErrInvalidToken. The caller holds holdsMu.
func (ix *Index) tombstone(h *hold) {
	if h.state == holdExpired {
		return
	}
	h.state = holdExpired
	h.retainUntil = h.expiresAt.Add(h.ttl)
}

// ReleaseHold drops an uncommitted hold and frees its cells.
func (ix *Index) ReleaseHold(token HoldToken) error {
	ix.holdsMu.Lock()
	h, ok := ix.holds[token]
	if !ok || h.state == holdCommitting {
		ix.holdsMu.Unlock()
		return ErrInvalidToken
	}
	delete(ix.holds, token)
	key, iv := h.key, h.iv
	ix.holdsMu.Unlock()

	ix.freeHeld(key, iv, token)
	return nil
}

func (ix *Index) freeHeld(key Key, iv models.Interval, token HoldToken) {
	cells, err := ix.cellRange(key, iv, false)
	if err != nil || cells == nil {
		return
	}
	lockCells(cells)
	defer unlockCells(cells)
	for _, c := range cells {
		if c.status == models.SlotHeld && c.owner == string(token) {
			c.reset()
		}
	}
}

// Release frees booked or held cells in iv that belong to owner, which is
// either a booking ID, a hold token or a holder identity. It returns the
// number of cells freed.
func (ix *Index) Release(key Key, iv models.Interval, owner string) (int, error) {
	cells, err := ix.cellRange(key, iv, false)
	if err != nil || cells == nil {
		return 0, err
	}
	lockCells(cells)
	defer unlockCells(cells)

	now := ix.clock.Now()
	n := 0
	for _, c := range cells {
		c.expire(now)
		switch c.status {
		case models.SlotBooked:
			if c.owner != owner {
				continue
			}
		case models.SlotHeld:
			if c.owner != owner && c.holder != owner {
				continue
			}
		default:
			continue
		}
		c.reset()
		n++
	}
	return n, nil
}

// Block excludes iv from booking. Cells that are held or booked make the
// whole call fail with ErrBusy. Cells already blocked keep their original block.
func (ix *Index) Block(key Key, iv models.Interval, reason, blockID string) error {
	cells, err := ix.cellRange(key, iv, true)
	if err != nil {
		return err
	}
	lockCells(cells)
	defer unlockCells(cells)

	now := ix.clock.Now()
	var busy []*cell
	for _, c := range cells {
		c.expire(now)
		if c.status == models.SlotHeld || c.status == models.SlotBooked {
			busy = append(busy, c)
		}
	}
	if len(busy) > 0 {
		return fmt.Errorf("%w: %s", ErrBusy, describe(ix.collect(cells, iv.Start, false)))
	}
	for _, c := range cells {
		if c.status == models.SlotBlocked {
			continue
		}
		c.status = models.SlotBlocked
		c.owner = blockID
		c.reason = reason
	}
	return nil
}

// ReleaseBlock frees only the cells in iv that blockID blocked.
func (ix *Index) ReleaseBlock(key Key, iv models.Interval, blockID string) (int, error) {
	cells, err := ix.cellRange(key, iv, false)
	if err != nil || cells == nil {
		return 0, err
	}
	lockCells(cells)
	defer unlockCells(cells)

	n := 0
	for _, c := range cells {
		if c.status == models.SlotBlocked && c.owner == blockID {
			c.reset()
			n++
		}
	}
	return n, nil
}

// Unblock frees every blocked cell in iv and returns how many were freed.
func (ix *Index) Unblock(key Key, iv models.Interval) (int, error) {
	cells, err := ix.cellRange(key, iv, false)
	if err != nil || cells == nil {
		return 0, err
	}
	lockCells(cells)
	defer unlockCells(cells)

	n := 0
	for _, c := range cells {
		if c.status == models.SlotBlocked {
			c.reset()
			n++
		}
	}
	return n, nil
}

// Snapshot copies out the whole day as ordered, disjoint entries.
func (ix *Index) Snapshot(key Key) []Entry {
	d := ix.day(key, false)
	if d == nil {
		return []Entry{{
			Interval: models.Interval{Start: 0, End: models.MinutesPerDay},
			Status:   models.SlotFree,
		}}
	}
	lockCells(d.cells)
	defer unlockCells(d.cells)

	now := ix.clock.Now()
	for _, c := range d.cells {
		c.expire(now)
	}
	return ix.collect(d.cells, 0, true)
}

// Restore recomputes a day from authoritative entries (blocks and confirmed
// bookings). Live holds are left alone so an in-flight reservation can still
// commit. Entries off the cell grid are widened to the enclosing cells.
// It returns a warning for every inconsistency found.
func (ix *Index) Restore(key Key, entries []Entry) []string {
	ix.holdsMu.Lock()
	retired := make(map[string]bool, len(ix.retired))
	for id := range ix.retired {
		retired[id] = true
	}
	ix.holdsMu.Unlock()

	d := ix.day(key, true)
	lockCells(d.cells)
	defer unlockCells(d.cells)

	now := ix.clock.Now()
	for _, c := range d.cells {
		c.expire(now)
		if c.status != models.SlotHeld {
			c.reset()
		}
	}

	var warnings []string
	for _, e := range entries {
		if !e.Valid() {
			warnings = append(warnings, fmt.Sprintf("%s: ignored invalid interval %s for %s", key, e.Interval, e.Owner))
			continue
		}
		if e.Status == models.SlotBooked && retired[e.Owner] {
			continue
		}
		first := e.Start / ix.step
		last := (e.End + ix.step - 1) / ix.step
		heldSkipped := false
		overlapping := map[string]bool{}
		for i := first; i < last; i++ {
			c := d.cells[i]
			switch c.status {
			case models.SlotHeld:
				heldSkipped = true
				continue
			case models.SlotBooked:
				if e.Status == models.SlotBooked && c.owner != e.Owner && !overlapping[c.owner] {
					overlapping[c.owner] = true
					warnings = append(warnings, fmt.Sprintf("%s: bookings %s and %s overlap", key, c.owner, e.Owner))
				}
			}
			c.status = e.Status
			c.owner = e.Owner
			c.reason = e.Reason
		}
		if heldSkipped {
			warnings = append(warnings, fmt.Sprintf("%s: %s overlaps a live hold, left as held", key, e.Owner))
		}
	}
	return warnings
}

// Retire marks a booking whose ledger row is being rolled back, so a
// concurrent Restore does not bring it back as booked.
func (ix *Index) Retire(bookingID string) {
	ix.holdsMu.Lock()
	ix.retired[bookingID] = ix.clock.Now().Add(retireFor)
	ix.holdsMu.Unlock()
}

// Occupy marks iv booked by bookingID regardless of pending holds, for a
// ledger row that exists without a committed hold. Blocked cells stay
// blocked and cells booked by another booking are left alone and reported.
func (ix *Index) Occupy(key Key, iv models.Interval, bookingID string) ([]string, error) {
	cells, err := ix.cellRange(key, iv, true)
	if err != nil {
		return nil, err
	}
	ix.holdsMu.Lock()
	delete(ix.retired, bookingID)
	ix.holdsMu.Unlock()

	lockCells(cells)
	defer unlockCells(cells)

	now := ix.clock.Now()
	var warnings []string
	seen := map[string]bool{}
	for _, c := range cells {
		c.expire(now)
		switch {
		case c.status == models.SlotBlocked:
			continue
		case c.status == models.SlotBooked && c.owner != bookingID:
			if !seen[c.owner] {
				seen[c.owner] = true
				warnings = append(warnings, fmt.Sprintf("%s: bookings %s and %s overlap", key, c.owner, bookingID))
			}
			continue
		}
		// A pending hold taken over here fails its commit.
		c.status = models.SlotBooked
		c.owner = bookingID
		c.holder = ""
		c.reason = ""
		c.expiresAt = time.Time{}
	}
	return warnings, nil
}

// Close makes Hold refuse courtID and returns the number of its holds
// that are still active or committing. Reopen lifts it.
func (ix *Index) Close(courtID string) int {
	ix.holdsMu.Lock()
	defer ix.holdsMu.Unlock()

	ix.closed[courtID] = true
	now := ix.clock.Now()
	live := 0
	for _, h := range ix.holds {
		if h.key.CourtID != courtID {
			continue
		}
		if h.state == holdCommitting || (h.state == holdActive && now.Before(h.expiresAt)) {
			live++
		}
	}
	return live
}

func (ix *Index) Reopen(courtID string) {
	ix.holdsMu.Lock()
	delete(ix.closed, courtID)
	ix.holdsMu.Unlock()
}

// Keys lists the court days currently held in memory.
func (ix *Index) Keys() []Key {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	keys := make([]Key, 0, len(ix.days))
	for k := range ix.days {
		keys = append(keys, k)
	}
	return keys
}

// Evict drops every day strictly before date ("2006-01-02") from memory.
func (ix *Index) Evict(before string) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	n := 0
	for k := range ix.days {
		if k.Date < before {
			delete(ix.days, k)
			n++
		}
	}
	return n
}

// Sweep expires lapsed holds, frees their cells and forgets old tombstones.
func (ix *Index) Sweep() int {
	type lapsed struct {
		token HoldToken
		key   Key
		iv    models.Interval
	}

	now := ix.clock.Now()
	var toFree []lapsed
	ix.holdsMu.Lock()
	for token, h := range ix.holds {
		switch h.state {
		case holdActive:
			if !now.Before(h.expiresAt) {
				ix.tombstone(h)
				toFree = append(toFree, lapsed{token: token, key: h.key, iv: h.iv})
			}
		case holdExpired:
			if !now.Before(h.retainUntil) {
				delete(ix.holds, token)
			}
		}
	}
	for id, until := range ix.retired {
		if !now.Before(until) {
			delete(ix.retired, id)
		}
	}
	ix.holdsMu.Unlock()

	for _, l := range toFree {
		ix.freeHeld(l.key, l.iv, l.token)
	}
	return len(toFree)
}

// Run sweeps expired holds every interval until ctx is cancelled.
func (ix *Index) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := ix.Sweep(); n > 0 {
				ix.logger.Debug("Expired holds swept", zap.Int("count", n))
			}
		}
	}
}
