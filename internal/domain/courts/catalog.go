package courts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/cases"

	"courtmate/backend/internal/observability"
)

//go:embed fallback_courts.json
var fallbackJSON []byte

// FallbackCourts is served when neither the sheet nor a snapshot has data.
func FallbackCourts() []TennisCourt {
	var out []TennisCourt
	if err := json.Unmarshal(fallbackJSON, &out); err != nil {
		panic(fmt.Sprintf("courts: bad embedded fallback: %v", err))
	}
	return out
}

const (
	SourceSheet    = "sheet"
	SourceSnapshot = "snapshot"
	SourceFallback = "fallback"
)

// Sheet is the writable upstream of the catalog.
type Sheet interface {
	Read(ctx context.Context) ([]TennisCourt, error)
	Write(ctx context.Context, courts []TennisCourt) error
	Append(ctx context.Context, c TennisCourt) error
	Info(ctx context.Context) (*SheetInfo, error)
	URL() string
}

// Catalog serves the court list from memory and refreshes it from the sheet.
// Reads never wait on the network once the first load has happened.
type Catalog struct {
	sheet    Sheet
	snapshot Snapshot
	interval time.Duration
	now      func() time.Time

	loadMu sync.Mutex
	loaded atomic.Bool

	mu         sync.RWMutex
	courts     []TennisCourt
	facilities []TennisFacility
	source     string
	lastSync   time.Time
}

// NewCatalog builds a catalog. sheet and snapshot may be nil.
func NewCatalog(sheet Sheet, snapshot Snapshot, interval time.Duration) *Catalog {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Catalog{
		sheet:    sheet,
		snapshot: snapshot,
		interval: interval,
		now:      time.Now,
	}
}

func (c *Catalog) set(courts []TennisCourt, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.courts = courts
	c.facilities = groupFacilities(courts)
	c.source = source
	if source == SourceSheet {
		c.lastSync = c.now()
	}
}

// Load fills the cache from the first source that has data: sheet, then
// snapshot, then the embedded fallback.
func (c *Catalog) Load(ctx context.Context) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	c.load(ctx)
	c.loaded.Store(true)
}

func (c *Catalog) load(ctx context.Context) {
	logger := observability.LoggerFromContext(ctx)

	if c.refreshFromSheet(ctx) {
		return
	}

	if c.snapshot != nil {
		courts, err := c.snapshot.Load(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("court snapshot unavailable")
		} else if len(courts) > 0 {
			c.set(courts, SourceSnapshot)
			observability.IncCourtRefresh(SourceSnapshot)
			logger.Info().Int("courts", len(courts)).Msg("loaded courts from snapshot")
			return
		}
	}

	c.set(FallbackCourts(), SourceFallback)
	observability.IncCourtRefresh(SourceFallback)
	logger.Info().Msg("using fallback court list")
}

// refreshFromSheet replaces the cache with a non-empty sheet read and
// refreshes the snapshot. Failures keep the current cache.
func (c *Catalog) refreshFromSheet(ctx context.Context) bool {
	if c.sheet == nil {
		return false
	}
	logger := observability.LoggerFromContext(ctx)

	courts, err := c.sheet.Read(ctx)
	if err != nil {
		observability.IncCourtRefresh("failed")
		logger.Warn().Err(err).Msg("court sheet read failed")
		return false
	}
	if len(courts) == 0 {
		logger.Warn().Msg("court sheet is empty")
		return false
	}

	c.set(courts, SourceSheet)
	observability.IncCourtRefresh(SourceSheet)
	logger.Info().Int("courts", len(courts)).Msg("synced courts from sheet")

	if c.snapshot != nil {
		if err := c.snapshot.Save(ctx, courts); err != nil {
			logger.Warn().Err(err).Msg("court snapshot save failed")
		}
	}
	return true
}

// Start loads the catalog and refreshes it every interval until ctx is done.
func (c *Catalog) Start(ctx context.Context) {
	c.Load(ctx)

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.refreshFromSheet(ctx)
			}
		}
	}()
}

func (c *Catalog) ensureLoaded() {
	if c.loaded.Load() {
		return
	}
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if c.loaded.Load() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.load(ctx)
	c.loaded.Store(true)
}

func (c *Catalog) snapshotView() ([]TennisCourt, []TennisFacility) {
	c.ensureLoaded()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.courts, c.facilities
}

func (c *Catalog) filter(keep func(TennisCourt) bool) []TennisCourt {
	courts, _ := c.snapshotView()
	out := []TennisCourt{}
	for _, ct := range courts {
		if keep(ct) {
			out = append(out, ct)
		}
	}
	return out
}

func (c *Catalog) Courts() []TennisCourt {
	return c.filter(func(TennisCourt) bool { return true })
}

func (c *Catalog) Facilities() []TennisFacility {
	_, facilities := c.snapshotView()
	return append([]TennisFacility{}, facilities...)
}

func (c *Catalog) ByRegion(region string) []TennisCourt {
	return c.filter(func(ct TennisCourt) bool { return ct.Region == region })
}

func (c *Catalog) ByFacility(name string) []TennisCourt {
	return c.filter(func(ct TennisCourt) bool { return ct.FacilityName == name })
}

func (c *Catalog) ByTimePeriod(period string) []TennisCourt {
	return c.filter(func(ct TennisCourt) bool { return ct.TimePeriod == period })
}

// Search matches q case-insensitively against facility, region, address and description.
func (c *Catalog) Search(q string) []TennisCourt {
	fold := cases.Fold()
	needle := fold.String(q)
	return c.filter(func(ct TennisCourt) bool {
		for _, field := range []string{ct.FacilityName, ct.Region, ct.Address, ct.Description} {
			if strings.Contains(fold.String(field), needle) {
				return true
			}
		}
		return false
	})
}

// Query applies every non-empty field of f.
func (c *Catalog) Query(f Filter) []TennisCourt {
	out := c.Courts()
	if f.Query != "" {
		out = c.Search(f.Query)
	}
	keep := out[:0]
	for _, ct := range out {
		if f.Region != "" && ct.Region != f.Region {
			continue
		}
		if f.Facility != "" && ct.FacilityName != f.Facility {
			continue
		}
		if f.TimePeriod != "" && ct.TimePeriod != f.TimePeriod {
			continue
		}
		keep = append(keep, ct)
	}
	return keep
}

func (c *Catalog) distinct(field func(TennisCourt) string) []string {
	courts, _ := c.snapshotView()
	seen := map[string]struct{}{}
	out := []string{}
	for _, ct := range courts {
		v := field(ct)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Regions() []string {
	return c.distinct(func(ct TennisCourt) string { return ct.Region })
}

func (c *Catalog) FacilityNames() []string {
	return c.distinct(func(ct TennisCourt) string { return ct.FacilityName })
}

func (c *Catalog) TimePeriods() []string {
	return c.distinct(func(ct TennisCourt) string { return ct.TimePeriod })
}

func (c *Catalog) CourtInfo(facility, courtNumber string) (TennisCourt, bool) {
	courts, _ := c.snapshotView()
	for _, ct := range courts {
		if ct.FacilityName == facility && ct.CourtNumber == courtNumber {
			return ct, true
		}
	}
	return TennisCourt{}, false
}

func (c *Catalog) FacilityInfo(name string) (TennisFacility, bool) {
	_, facilities := c.snapshotView()
	for _, f := range facilities {
		if f.FacilityName == name {
			return f, true
		}
	}
	return TennisFacility{}, false
}

// LastSync is the time of the last successful sheet read, zero if none.
func (c *Catalog) LastSync() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync
}

// Source reports where the current list came from.
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// ReplaceAll overwrites the sheet. The cache picks the change up on the next refresh.
func (c *Catalog) ReplaceAll(ctx context.Context, courts []TennisCourt) error {
	if c.sheet == nil {
		return ErrUnavailable
	}
	trimmed := make([]TennisCourt, len(courts))
	for i, ct := range courts {
		ct.Trim()
		trimmed[i] = ct
	}
	return c.sheet.Write(ctx, trimmed)
}

// Add appends one court to the sheet.
func (c *Catalog) Add(ctx context.Context, court TennisCourt) error {
	court.Trim()
	if court.FacilityName == "" || court.Region == "" || court.CourtNumber == "" {
		return fmt.Errorf("%w: facility_name, region and court_number are required", ErrBadRequest)
	}
	if c.sheet == nil {
		return ErrUnavailable
	}
	return c.sheet.Append(ctx, court)
}

func (c *Catalog) SheetInfo(ctx context.Context) (*SheetInfo, error) {
	if c.sheet == nil {
		return nil, ErrUnavailable
	}
	return c.sheet.Info(ctx)
}
