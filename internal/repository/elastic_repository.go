package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/olivere/elastic/v7"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

const (
	// maxResultWindow is the default index.max_result_window of Elasticsearch.
	maxResultWindow = 10000
	// cursorBatch is the hit count of one scroll or search_after request.
	cursorBatch = 1000
)

// employeeDoc is the Elasticsearch document of an employee.
type employeeDoc struct {
	Title       string    `json:"title"`
	Name        string    `json:"name"`
	Designation string    `json:"designation"`
	DOB         string    `json:"dob"`
	Address     string    `json:"address"`
	Image       *imageDoc `json:"image"`
	UID         string    `json:"uid"`
	Seq         int64     `json:"seq"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// imageDoc has no omitempty so that a partial update overwrites every key.
type imageDoc struct {
	Kind        string `json:"kind"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
	Locator     string `json:"locator"`
}

type elasticEmployeeRepository struct {
	client  *elastic.Client
	index   string
	now     func() time.Time
	window  int
	batch   int
	lastSeq atomic.Int64
}

// NewElasticEmployeeRepository creates an Elasticsearch backed
// EmployeeRepository. Document ids are random UUIDs, copied into the uid
// field so listings can sort on (seq, uid).
func NewElasticEmployeeRepository(client *elastic.Client, index string) domain.EmployeeRepository {
	return newElasticEmployeeRepository(client, index)
}

func newElasticEmployeeRepository(client *elastic.Client, index string) *elasticEmployeeRepository {
	return &elasticEmployeeRepository{
		client: client,
		index:  index,
		now:    time.Now,
		window: maxResultWindow,
		batch:  cursorBatch,
	}
}

func (r *elasticEmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	now := r.now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	id := uuid.New().String()
	doc := toDoc(e)
	doc.UID = id
	doc.Seq = r.nextSeq(now)
	_, err := r.client.Index().
		Index(r.index).
		Id(id).
		BodyJson(doc).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return &domain.StorageError{Op: "create employee", Err: err}
	}
	e.ID = id
	return nil
}

// nextSeq returns the creation stamp in nanoseconds, strictly increasing
// within this process. Ties across processes are broken by uid.
func (r *elasticEmployeeRepository) nextSeq(now time.Time) int64 {
	for {
		last := r.lastSeq.Load()
		seq := now.UnixNano()
		if seq <= last {
			seq = last + 1
		}
		if r.lastSeq.CompareAndSwap(last, seq) {
			return seq
		}
	}
}

func (r *elasticEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if id == "" {
		return nil, &domain.NotFoundError{ID: id}
	}
	res, err := r.client.Get().Index(r.index).Id(id).Do(ctx)
	if err != nil {
		return nil, elasticError("get employee", id, err)
	}
	if !res.Found {
		return nil, &domain.NotFoundError{ID: id}
	}
	return decodeDoc(res.Id, res.Source)
}

// Update sends a partial document; Elasticsearch applies it atomically.
func (r *elasticEmployeeRepository) Update(ctx context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	if id == "" {
		return nil, &domain.NotFoundError{ID: id}
	}

	partial := map[string]interface{}{"updatedAt": r.now().UTC()}
	if patch.Title != nil {
		partial["title"] = *patch.Title
	}
	if patch.Name != nil {
		partial["name"] = *patch.Name
	}
	if patch.Designation != nil {
		partial["designation"] = *patch.Designation
	}
	if patch.DOB != nil {
		partial["dob"] = patch.DOB.Format(domain.DateLayout)
	}
	if patch.Address != nil {
		partial["address"] = *patch.Address
	}
	if patch.Attachment != nil {
		partial["image"] = toImageDoc(patch.Attachment)
	}

	_, err := r.client.Update().
		Index(r.index).
		Id(id).
		Doc(partial).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return nil, elasticError("update employee", id, err)
	}
	return r.GetByID(ctx, id)
}

func (r *elasticEmployeeRepository) Delete(ctx context.Context, id string) (*domain.Employee, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_, err = r.client.Delete().
		Index(r.index).
		Id(id).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return nil, elasticError("delete employee", id, err)
	}
	return e, nil
}

func (r *elasticEmployeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	if filter.Limit <= 0 {
		all, err := r.scrollAll(ctx)
		if err != nil {
			return nil, err
		}
		if offset >= len(all) {
			return []domain.Employee{}, nil
		}
		return all[offset:], nil
	}

	if filter.Limit > r.window || offset > r.window-filter.Limit {
		return r.searchAfter(ctx, offset, filter.Limit)
	}

	res, err := r.sorted(nil).
		From(offset).
		Size(filter.Limit).
		Do(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "list employees", Err: err}
	}
	return decodeHits(res.Hits.Hits)
}

// searchAfter serves windows beyond from+size limits. It walks past the
// first offset hits fetching only the sort keys, then collects limit hits.
func (r *elasticEmployeeRepository) searchAfter(ctx context.Context, offset, limit int) ([]domain.Employee, error) {
	var after []interface{}
	keysOnly := elastic.NewFetchSourceContext(true).Include("seq", "uid")

	for offset > 0 {
		n := min(offset, r.batch)
		res, err := r.sorted(after).
			FetchSourceContext(keysOnly).
			Size(n).
			Do(ctx)
		if err != nil {
			return nil, &domain.StorageError{Op: "list employees", Err: err}
		}
		hits := res.Hits.Hits
		if len(hits) < n {
			return []domain.Employee{}, nil
		}
		if after, err = cursorOf(hits[len(hits)-1]); err != nil {
			return nil, err
		}
		offset -= n
	}

	employees := []domain.Employee{}
	for len(employees) < limit {
		n := min(limit-len(employees), r.batch)
		res, err := r.sorted(after).Size(n).Do(ctx)
		if err != nil {
			return nil, &domain.StorageError{Op: "list employees", Err: err}
		}
		hits := res.Hits.Hits
		page, err := decodeHits(hits)
		if err != nil {
			return nil, err
		}
		employees = append(employees, page...)
		if len(hits) < n {
			break
		}
		if after, err = cursorOf(hits[len(hits)-1]); err != nil {
			return nil, err
		}
	}
	return employees, nil
}

// sorted is a match-all search in insertion order, resuming after the
// given (seq, uid) cursor when one is set.
func (r *elasticEmployeeRepository) sorted(after []interface{}) *elastic.SearchService {
	svc := r.client.Search().
		Index(r.index).
		Query(elastic.NewMatchAllQuery()).
		Sort("seq", true).
		Sort("uid", true)
	if after != nil {
		svc = svc.SearchAfter(after...)
	}
	return svc
}

// scrollAll walks the whole index in insertion order. Unbounded listings
// may exceed the from/size result window.
func (r *elasticEmployeeRepository) scrollAll(ctx context.Context) ([]domain.Employee, error) {
	scroll := r.client.Scroll(r.index).
		Size(r.batch).
		KeepAlive("2m").
		Sort("seq", true).
		Sort("uid", true)
	defer scroll.Clear(context.Background())

	employees := []domain.Employee{}
	for {
		res, err := scroll.Do(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &domain.StorageError{Op: "list employees", Err: err}
		}
		page, err := decodeHits(res.Hits.Hits)
		if err != nil {
			return nil, err
		}
		employees = append(employees, page...)
	}
	return employees, nil
}

func (r *elasticEmployeeRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.Count(r.index).Do(ctx)
	if err != nil {
		return 0, &domain.StorageError{Op: "count employees", Err: err}
	}
	return int(n), nil
}

func elasticError(op, id string, err error) error {
	if elastic.IsNotFound(err) {
		return &domain.NotFoundError{ID: id}
	}
	return &domain.StorageError{Op: op, Err: err}
}

func decodeHits(hits []*elastic.SearchHit) ([]domain.Employee, error) {
	employees := make([]domain.Employee, 0, len(hits))
	for _, hit := range hits {
		e, err := decodeDoc(hit.Id, hit.Source)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, nil
}

// cursorOf reads the sort keys from the source rather than hit.Sort, whose
// float64 decoding loses precision on nanosecond stamps.
func cursorOf(hit *elastic.SearchHit) ([]interface{}, error) {
	var keys struct {
		Seq int64  `json:"seq"`
		UID string `json:"uid"`
	}
	if err := json.Unmarshal(hit.Source, &keys); err != nil {
		return nil, &domain.StorageError{Op: "decode employee", Err: fmt.Errorf("document %s: %w", hit.Id, err)}
	}
	if keys.UID == "" {
		keys.UID = hit.Id
	}
	return []interface{}{keys.Seq, keys.UID}, nil
}

func toDoc(e *domain.Employee) employeeDoc {
	return employeeDoc{
		Title:       e.Title,
		Name:        e.Name,
		Designation: e.Designation,
		DOB:         e.DOB.Format(domain.DateLayout),
		Address:     e.Address,
		Image:       toImageDoc(e.Attachment),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toImageDoc(a *domain.Attachment) *imageDoc {
	if a == nil {
		return nil
	}
	return &imageDoc{Kind: string(a.Kind), ContentType: a.ContentType, Data: a.Data, Locator: a.Locator}
}

func decodeDoc(id string, source json.RawMessage) (*domain.Employee, error) {
	var doc employeeDoc
	if err := json.Unmarshal(source, &doc); err != nil {
		return nil, &domain.StorageError{Op: "decode employee", Err: fmt.Errorf("document %s: %w", id, err)}
	}
	dob, err := time.Parse(domain.DateLayout, doc.DOB)
	if err != nil {
		return nil, &domain.StorageError{Op: "decode employee", Err: fmt.Errorf("document %s dob: %w", id, err)}
	}

	e := &domain.Employee{
		ID:          id,
		Title:       doc.Title,
		Name:        doc.Name,
		Designation: doc.Designation,
		DOB:         dob,
		Address:     doc.Address,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
	if doc.Image != nil && doc.Image.Kind != "" {
		e.Attachment = &domain.Attachment{
			Kind:        domain.AttachmentKind(doc.Image.Kind),
			ContentType: doc.Image.ContentType,
			Data:        doc.Image.Data,
			Locator:     doc.Image.Locator,
		}
	}
	return e, nil
}
