package viewmodel

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/aciforge/portal/internal/logger"
	"github.com/aciforge/portal/internal/models"
	"github.com/aciforge/portal/internal/session"
)

// Gateway is the slice of the remote API the list view-model needs.
type Gateway interface {
	ListRequests(ctx context.Context, token string) ([]models.MaintenanceRequest, error)
	ListMyRequests(ctx context.Context, token string) ([]models.MaintenanceRequest, error)
	Statistics(ctx context.Context, token string) (*models.Statistics, error)
	GetRequest(ctx context.Context, token string, id int) (*models.MaintenanceRequest, error)
	UpdateRequestStatus(ctx context.Context, token string, id int, status models.RequestStatus) (*models.MaintenanceRequest, error)
	DeleteRequest(ctx context.Context, token string, id int) error
}

type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeMine Scope = "mine"
)

type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByPriority SortKey = "priority"
)

// FilterAll disables a status or priority filter.
const FilterAll = "all"

var (
	ErrNotAllowed     = errors.New("viewmodel: operation not allowed")
	ErrBadPageSize    = errors.New("viewmodel: unsupported page size")
	ErrUnknownRequest = errors.New("viewmodel: request not found")
)

// PageSizes are the page sizes the list view offers.
var PageSizes = []int{10, 25, 50, 100}

// Query is the filter and sort configuration of the list view.
type Query struct {
	Search   string  `json:"search"`
	Status   string  `json:"status"`
	Priority string  `json:"priority"`
	Sort     SortKey `json:"sort"`
}

// QueryPatch is a partial Query change; nil fields keep the current value.
type QueryPatch struct {
	Search   *string
	Status   *string
	Priority *string
	Sort     *SortKey
}

// Pagination holds the current window over the filtered set.
type Pagination struct {
	PageSize    int `json:"page_size"`
	CurrentPage int `json:"current_page"`
}

// RequestList owns the authoritative in-memory copy of maintenance
// requests for one session and derives the visible page from it. Mutations
// go through the gateway and the remote representation always wins: delete
// triggers a full reload, a status patch splices the returned record in.
type RequestList struct {
	mu sync.Mutex

	gw    Gateway
	token string
	actor models.User
	caps  session.Capabilities
	scope Scope

	loaded        bool
	authoritative []models.MaintenanceRequest
	stats         *models.Statistics

	query   Query
	page    Pagination
	derived []models.MaintenanceRequest
}

// New builds an empty list view-model for the given session and scope.
func New(gw Gateway, sess *session.Session, scope Scope) *RequestList {
	return &RequestList{
		gw:    gw,
		token: sess.AccessToken,
		actor: sess.User,
		caps:  sess.Capabilities,
		scope: scope,
		query: Query{Status: FilterAll, Priority: FilterAll, Sort: SortByDate},
		page:  Pagination{PageSize: PageSizes[0], CurrentPage: 1},
	}
}

// LoadAll replaces the authoritative collection from the gateway and
// refreshes the statistics snapshot. Pagination state is left untouched.
// A statistics failure is logged and ignored; the record collection and a
// failed statistics fetch are independent failure domains. On any list
// fetch error the prior collection is preserved.
func (l *RequestList) LoadAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked(ctx)
}

func (l *RequestList) loadLocked(ctx context.Context) error {
	var (
		records []models.MaintenanceRequest
		err     error
	)
	if l.scope == ScopeMine {
		records, err = l.gw.ListMyRequests(ctx, l.token)
	} else {
		records, err = l.gw.ListRequests(ctx, l.token)
	}
	if err != nil {
		return err
	}

	l.authoritative = records
	l.loaded = true
	l.recompute()

	if l.scope == ScopeAll {
		stats, err := l.gw.Statistics(ctx, l.token)
		if err != nil {
			logger.Warn("Failed to fetch maintenance statistics", map[string]interface{}{
				"error": err.Error(),
				"user":  l.actor.Username,
			})
		} else {
			l.stats = stats
		}
	}
	return nil
}

// Loaded reports whether an initial fetch has completed.
func (l *RequestList) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// SetQuery merges a partial query change and recomputes the derived view.
// It never touches pagination; a filter that shrinks the result set can
// leave the caller on an out-of-range, empty page.
func (l *RequestList) SetQuery(patch QueryPatch) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if patch.Search != nil {
		l.query.Search = *patch.Search
	}
	if patch.Status != nil {
		l.query.Status = *patch.Status
	}
	if patch.Priority != nil {
		l.query.Priority = *patch.Priority
	}
	if patch.Sort != nil {
		l.query.Sort = *patch.Sort
	}
	l.recompute()
}

// SetPage moves to the given 1-based page. Out-of-range pages are allowed
// and simply yield an empty visible slice.
func (l *RequestList) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.page.CurrentPage = n
}

// SetPageSize changes the page size and resets to the first page.
func (l *RequestList) SetPageSize(n int) error {
	ok := false
	for _, s := range PageSizes {
		if s == n {
			ok = true
			break
		}
	}
	if !ok {
		return ErrBadPageSize
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if n != l.page.PageSize {
		l.page.PageSize = n
		l.page.CurrentPage = 1
	}
	return nil
}

// Delete removes a record through the gateway and resynchronizes with a
// full reload. There is no optimistic removal: on failure the record stays
// visible and the error is surfaced.
func (l *RequestList) Delete(ctx context.Context, id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.caps.CanManageMaintenance {
		return ErrNotAllowed
	}
	if err := l.gw.DeleteRequest(ctx, l.token, id); err != nil {
		return err
	}
	return l.loadLocked(ctx)
}

// UpdateStatus patches a record's status. Same-status updates are a no-op
// and issue no gateway call. The actor must hold the maintenance
// capability or be the record's submitter. On success the returned
// representation replaces the single record; no full refetch.
func (l *RequestList) UpdateStatus(ctx context.Context, id int, status models.RequestStatus) (*models.MaintenanceRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.find(id)
	if current == nil {
		// Not in the local collection (e.g. opened straight from a detail
		// link); the gateway still owns the truth.
		fetched, err := l.gw.GetRequest(ctx, l.token, id)
		if err != nil {
			return nil, err
		}
		current = fetched
	}

	if !l.caps.CanManageMaintenance && l.actor.ID != current.Submitter.ID {
		return nil, ErrNotAllowed
	}
	if current.Status == status {
		return current, nil
	}

	updated, err := l.gw.UpdateRequestStatus(ctx, l.token, id, status)
	if err != nil {
		return nil, err
	}
	l.replace(*updated)
	l.recompute()
	return updated, nil
}

func (l *RequestList) find(id int) *models.MaintenanceRequest {
	for i := range l.authoritative {
		if l.authoritative[i].ID == id {
			return &l.authoritative[i]
		}
	}
	return nil
}

func (l *RequestList) replace(rec models.MaintenanceRequest) {
	for i := range l.authoritative {
		if l.authoritative[i].ID == rec.ID {
			l.authoritative[i] = rec
			return
		}
	}
	l.authoritative = append(l.authoritative, rec)
}

func (l *RequestList) recompute() {
	l.derived = ApplyQuery(l.authoritative, l.query)
}

// Visible returns the records of the current page.
func (l *RequestList) Visible() []models.MaintenanceRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Paginate(l.derived, l.page)
}

// TotalCount is the size of the filtered, sorted set.
func (l *RequestList) TotalCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.derived)
}

// TotalPages is ceil(count/pageSize); 0 when the filtered set is empty.
func (l *RequestList) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return totalPages(len(l.derived), l.page.PageSize)
}

func (l *RequestList) CurrentPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page.CurrentPage
}

func (l *RequestList) PageSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page.PageSize
}

func (l *RequestList) Query() Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// Statistics returns the last successfully fetched snapshot, or nil.
func (l *RequestList) Statistics() *models.Statistics {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// ApplyQuery filters and sorts a record collection. Both sorts are stable:
// equal keys keep their input order.
func ApplyQuery(records []models.MaintenanceRequest, q Query) []models.MaintenanceRequest {
	needle := strings.ToLower(q.Search)
	out := make([]models.MaintenanceRequest, 0, len(records))
	for _, r := range records {
		if needle != "" && !matchesSearch(r, needle) {
			continue
		}
		if q.Status != "" && q.Status != FilterAll && string(r.Status) != q.Status {
			continue
		}
		if q.Priority != "" && q.Priority != FilterAll && string(r.Priority) != q.Priority {
			continue
		}
		out = append(out, r)
	}

	switch q.Sort {
	case SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	default:
		// Most recent first. ISO 8601 timestamps order lexicographically.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt > out[j].CreatedAt
		})
	}
	return out
}

// matchesSearch checks the case-insensitive substring predicate against
// title, description, equipment name and submitter full name.
func matchesSearch(r models.MaintenanceRequest, needle string) bool {
	return strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle) ||
		strings.Contains(strings.ToLower(r.EquipmentName), needle) ||
		strings.Contains(strings.ToLower(r.Submitter.FullName), needle)
}

// Paginate slices one page out of the filtered set. The page number is not
// clamped: a page past the end yields an empty slice.
func Paginate(records []models.MaintenanceRequest, p Pagination) []models.MaintenanceRequest {
	start := (p.CurrentPage - 1) * p.PageSize
	if start >= len(records) || start < 0 {
		return []models.MaintenanceRequest{}
	}
	end := start + p.PageSize
	if end > len(records) {
		end = len(records)
	}
	page := make([]models.MaintenanceRequest, end-start)
	copy(page, records[start:end])
	return page
}

func totalPages(count, pageSize int) int {
	if count == 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
