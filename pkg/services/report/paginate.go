package report

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

const (
	DefaultPageSize  = 10
	maxCachedBatches = 64
)

// PageSizes are the sizes offered to users.
var PageSizes = []int{10, 25, 50, 100}

type batchKey struct {
	table    uint64
	pageSize int
}

// Paginator splits aggregate tables into pages. The split for a given
// (table content, page size) pair is computed once and reused.
type Paginator struct {
	mu      sync.Mutex
	batches map[batchKey][][]domain.AggregateRow
}

func NewPaginator() *Paginator {
	return &Paginator{batches: make(map[batchKey][][]domain.AggregateRow)}
}

// TotalPages is ceil(rows/pageSize) but never less than one.
func TotalPages(rows, pageSize int) int {
	if pageSize <= 0 || rows == 0 {
		return 1
	}
	return (rows + pageSize - 1) / pageSize
}

// Paginate returns page (1-based) of table with rows re-indexed from 1.
func (p *Paginator) Paginate(table domain.AggregateTable, pageSize, page int) (domain.Page, error) {
	if pageSize <= 0 {
		return domain.Page{}, domain.ErrInvalidPageSize
	}

	total := TotalPages(table.Len(), pageSize)
	if page < 1 || page > total {
		return domain.Page{}, &domain.PageOutOfRangeError{Page: page, TotalPages: total}
	}

	result := domain.Page{
		Table:      table.Name,
		Number:     page,
		Size:       pageSize,
		TotalPages: total,
		TotalRows:  table.Len(),
		Rows:       []domain.PageRow{},
	}

	batches := p.split(table, pageSize)
	if page > len(batches) {
		return result, nil
	}

	for i, row := range batches[page-1] {
		result.Rows = append(result.Rows, domain.PageRow{Index: i + 1, AggregateRow: row})
	}
	return result, nil
}

func (p *Paginator) split(table domain.AggregateTable, pageSize int) [][]domain.AggregateRow {
	key := batchKey{table: fingerprint(table), pageSize: pageSize}

	p.mu.Lock()
	defer p.mu.Unlock()

	if b, ok := p.batches[key]; ok {
		return b
	}

	var batches [][]domain.AggregateRow
	for start := 0; start < len(table.Rows); start += pageSize {
		end := min(start+pageSize, len(table.Rows))
		batches = append(batches, slices.Clone(table.Rows[start:end]))
	}

	if len(p.batches) >= maxCachedBatches {
		clear(p.batches)
	}
	p.batches[key] = batches
	return batches
}

func (p *Paginator) cached() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.batches)
}

func fingerprint(table domain.AggregateTable) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(table.Name)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(table.KeyField)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(table.ValueField)

	var buf [8]byte
	for _, r := range table.Rows {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(r.Key)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(r.Value))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// PageStates keeps one PageState per table name so paginating one table never
// moves another.
type PageStates struct {
	mu          sync.Mutex
	defaultSize int
	states      map[string]domain.PageState
}

func NewPageStates(defaultSize int) *PageStates {
	if !slices.Contains(PageSizes, defaultSize) {
		defaultSize = DefaultPageSize
	}
	return &PageStates{
		defaultSize: defaultSize,
		states:      make(map[string]domain.PageState),
	}
}

func (s *PageStates) Get(table string) domain.PageState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.states[table]; ok {
		return st
	}
	return domain.PageState{PageSize: s.defaultSize, CurrentPage: 1}
}

func (s *PageStates) Set(table string, st domain.PageState) error {
	if !slices.Contains(PageSizes, st.PageSize) {
		return fmt.Errorf("%w: %d is not one of %v", domain.ErrInvalidPageSize, st.PageSize, PageSizes)
	}
	if st.CurrentPage < 1 {
		return &domain.PageOutOfRangeError{Page: st.CurrentPage}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[table] = st
	return nil
}

// Clamp pulls the stored page for table into [1, totalPages] and returns the
// resulting state.
func (s *PageStates) Clamp(table string, totalPages int) domain.PageState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[table]
	if !ok {
		st = domain.PageState{PageSize: s.defaultSize, CurrentPage: 1}
	}
	st.CurrentPage = max(1, min(st.CurrentPage, max(totalPages, 1)))
	s.states[table] = st
	return st
}

// Current paginates table at the caller's stored position, clamping a page
// left over from a larger table or page size.
func (s *PageStates) Current(p *Paginator, table domain.AggregateTable) (domain.Page, error) {
	st := s.Get(table.Name)
	st = s.Clamp(table.Name, TotalPages(table.Len(), st.PageSize))
	return p.Paginate(table, st.PageSize, st.CurrentPage)
}

func (s *PageStates) Reset(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, table)
}
