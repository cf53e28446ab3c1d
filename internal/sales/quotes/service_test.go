package quotes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/sales/invoices"
	"github.com/amexing/amexing-ops/internal/shared"
)

type memRepository struct {
	mu        sync.Mutex
	quotes    map[int64]Quote
	invoices  map[int64]invoices.Invoice
	sequences map[string]int
	clients   map[int64]bool
	nextID    int64
	insertErr error
}

func newMemRepository() *memRepository {
	return &memRepository{
		quotes:    map[int64]Quote{},
		invoices:  map[int64]invoices.Invoice{},
		sequences: map[string]int{},
		clients:   map[int64]bool{1: true, 2: false},
	}
}

func (m *memRepository) seed(id int64, status Status) {
	client := int64(1)
	m.quotes[id] = Quote{
		ID:             id,
		Folio:          "QT-2405-0001",
		Status:         status,
		ClientID:       &client,
		ClientName:     "Hotel Casa Blanca",
		NumberOfPeople: 4,
		Currency:       "MXN",
		State:          shared.StateActive,
		ServiceItems: ServiceItems{
			Days: []ServiceDay{{Date: "2024-05-10", Items: []ServiceItem{{
				Description: "Traslado aeropuerto",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("1500.00"),
				Total:       decimal.RequireFromString("1500.00"),
			}}}},
			Subtotal: decimal.RequireFromString("1500.00"),
			IVA:      decimal.RequireFromString("240.00"),
			Total:    decimal.RequireFromString("1740.00"),
		},
	}
}

func (m *memRepository) pendingCount(quoteID int64) int {
	n := 0
	for _, inv := range m.invoices {
		if inv.QuoteID == quoteID && inv.Status == invoices.StatusPending {
			n++
		}
	}
	return n
}

func (m *memRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	quotes := make(map[int64]Quote, len(m.quotes))
	for k, v := range m.quotes {
		quotes[k] = v
	}
	invs := make(map[int64]invoices.Invoice, len(m.invoices))
	for k, v := range m.invoices {
		invs[k] = v
	}
	seqs := make(map[string]int, len(m.sequences))
	for k, v := range m.sequences {
		seqs[k] = v
	}
	if err := fn(ctx, memTx{m}); err != nil {
		m.quotes, m.invoices, m.sequences = quotes, invs, seqs
		return err
	}
	return nil
}

func (m *memRepository) Get(_ context.Context, id int64) (Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok || q.State == shared.StateDeleted {
		return Quote{}, ErrNotFound
	}
	return q, nil
}

func (m *memRepository) List(_ context.Context, f ListFilters) ([]Quote, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Quote
	total := 0
	for _, q := range m.quotes {
		if q.State == shared.StateDeleted {
			continue
		}
		total++
		if f.Status == "" || q.Status == f.Status {
			out = append(out, q)
		}
	}
	return out, total, len(out), nil
}

type memTx struct{ m *memRepository }

func (t memTx) GetForUpdate(_ context.Context, id int64) (Quote, error) {
	q, ok := t.m.quotes[id]
	if !ok || q.State == shared.StateDeleted {
		return Quote{}, ErrNotFound
	}
	return q, nil
}

func (t memTx) ClientActive(_ context.Context, clientID int64) (bool, error) {
	return t.m.clients[clientID], nil
}

func (t memTx) NextSequence(_ context.Context, key string) (int, error) {
	t.m.sequences[key]++
	return t.m.sequences[key], nil
}

func (t memTx) Insert(_ context.Context, q Quote) (Quote, error) {
	if t.m.insertErr != nil {
		return Quote{}, t.m.insertErr
	}
	t.m.nextID++
	q.ID = t.m.nextID
	q.State = shared.StateActive
	t.m.quotes[q.ID] = q
	return q, nil
}

func (t memTx) Update(_ context.Context, id int64, f UpdateFields) error {
	t.m.quotes[id] = applyFields(t.m.quotes[id], f)
	return nil
}

func (t memTx) SetCancelled(_ context.Context, id int64, reason string) error {
	q := t.m.quotes[id]
	q.Status, q.CancelReason = StatusRejected, reason
	t.m.quotes[id] = q
	return nil
}

func (t memTx) SetState(_ context.Context, id int64, state shared.RecordState) error {
	q := t.m.quotes[id]
	q.State = state
	t.m.quotes[id] = q
	return nil
}

func (t memTx) MarkInvoiceRequested(_ context.Context, id int64, by *int64, at time.Time) error {
	q := t.m.quotes[id]
	q.InvoiceRequested, q.InvoiceRequestedBy, q.InvoiceRequestDate = true, by, &at
	t.m.quotes[id] = q
	return nil
}

func (t memTx) ClearInvoiceRequest(_ context.Context, id int64) error {
	q := t.m.quotes[id]
	q.InvoiceRequested, q.InvoiceRequestedBy, q.InvoiceRequestDate = false, nil, nil
	t.m.quotes[id] = q
	return nil
}

func (t memTx) HasPendingInvoice(_ context.Context, id int64) (bool, error) {
	return t.m.pendingCount(id) > 0, nil
}

func (t memTx) InsertPendingInvoice(_ context.Context, id int64, by *int64, at time.Time) (invoices.Invoice, error) {
	if t.m.pendingCount(id) > 0 {
		return invoices.Invoice{}, invoices.ErrPendingExists
	}
	inv := invoices.Invoice{ID: int64(len(t.m.invoices) + 1), QuoteID: id, Status: invoices.StatusPending, RequestedBy: by, RequestDate: at}
	t.m.invoices[inv.ID] = inv
	return inv, nil
}

func (t memTx) CancelPendingInvoice(_ context.Context, id int64, reason string, actor *int64, at time.Time) (int64, error) {
	var n int64
	for k, inv := range t.m.invoices {
		if inv.QuoteID == id && inv.Status == invoices.StatusPending {
			inv.Status, inv.CancelReason, inv.ProcessedBy, inv.ProcessDate = invoices.StatusCancelled, reason, actor, &at
			t.m.invoices[k] = inv
			n++
		}
	}
	return n, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	requests []invoices.Invoice
	err      error
}

func (n *recordingNotifier) InvoiceRequested(_ context.Context, _ Quote, inv invoices.Invoice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, inv)
	return n.err
}

type fakeRenderer struct {
	last ReceiptData
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, data ReceiptData) ([]byte, error) {
	f.last = data
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 receipt"), nil
}

var (
	admin   = shared.Actor{ID: 6, Name: "Admin", Email: "admin@amexing.test", Role: shared.RoleAdmin}
	manager = shared.Actor{ID: 3, Name: "Gerente", Email: "gerente@amexing.test", Role: shared.RoleDepartmentManager}
)

var testNow = time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC)

func newTestService(repo Repository, renderer ReceiptRenderer, notifier Notifier) *Service {
	cfg := Config{
		IVARate: decimal.RequireFromString("0.16"),
		Payment: PaymentInfo{BankName: "BBVA", AccountHolder: "Amexing SA de CV", CLABE: "012180001234567890"},
	}
	svc := NewService(repo, renderer, cfg, nil, notifier, nil, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func strPtr(s string) *string { return &s }

func TestCreatePricesItineraryAndAssignsFolio(t *testing.T) {
	repo := newMemRepository()
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	req := CreateRequest{
		ClientID:       1,
		NumberOfPeople: 6,
		ContactPerson:  " Laura Méndez ",
		Days: []DayRequest{
			{Date: "2024-05-10", Items: []ItemRequest{
				{Description: "Traslado aeropuerto", Quantity: 2, UnitPrice: decimal.RequireFromString("850.50")},
			}},
			{Date: "2024-05-11", Items: []ItemRequest{
				{Description: "Tour Centro Histórico", Quantity: 1, UnitPrice: decimal.RequireFromString("3200")},
			}},
		},
	}
	q, err := svc.Create(ctx, manager, req)
	require.NoError(t, err)
	assert.Equal(t, "QT-2405-0001", q.Folio)
	assert.Equal(t, StatusRequested, q.Status)
	assert.Equal(t, "MXN", q.Currency)
	assert.Equal(t, "Laura Méndez", q.ContactPerson)
	assert.Equal(t, "1701", q.ServiceItems.Days[0].Items[0].Total.String())
	assert.Equal(t, "4901", q.ServiceItems.Subtotal.String())
	assert.Equal(t, "784.16", q.ServiceItems.IVA.String())
	assert.Equal(t, "5685.16", q.ServiceItems.Total.String())

	second, err := svc.Create(ctx, manager, req)
	require.NoError(t, err)
	assert.Equal(t, "QT-2405-0002", second.Folio)
}

func TestCreateValidation(t *testing.T) {
	item := []DayRequest{{Items: []ItemRequest{{Description: "Traslado", Quantity: 1, UnitPrice: decimal.NewFromInt(100)}}}}
	cases := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"no people", CreateRequest{ClientID: 1, Days: item}, ErrInvalidPeople},
		{"no days", CreateRequest{ClientID: 1, NumberOfPeople: 1}, ErrNoItems},
		{"empty day", CreateRequest{ClientID: 1, NumberOfPeople: 1, Days: []DayRequest{{}}}, ErrNoItems},
		{"zero price", CreateRequest{ClientID: 1, NumberOfPeople: 1, Days: []DayRequest{{Items: []ItemRequest{{Description: "x", Quantity: 1}}}}}, ErrInvalidItem},
		{"bad day date", CreateRequest{ClientID: 1, NumberOfPeople: 1, Days: []DayRequest{{Date: "10/05/2024", Items: item[0].Items}}}, ErrInvalidDate},
		{"bad valid until", CreateRequest{ClientID: 1, NumberOfPeople: 1, ValidUntil: "mañana", Days: item}, ErrInvalidDate},
		{"inactive client", CreateRequest{ClientID: 2, NumberOfPeople: 1, Days: item}, ErrClientNotFound},
		{"unknown client", CreateRequest{ClientID: 9, NumberOfPeople: 1, Days: item}, ErrClientNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepository()
			_, err := newTestService(repo, nil, nil).Create(context.Background(), manager, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, repo.sequences)
		})
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
		want error
	}{
		{StatusRequested, StatusHold, nil},
		{StatusRequested, StatusScheduled, nil},
		{StatusHold, StatusScheduled, nil},
		{StatusHold, StatusRejected, nil},
		{StatusHold, StatusRequested, ErrInvalidTransition},
		{StatusRejected, StatusScheduled, ErrInvalidTransition},
		{StatusScheduled, StatusHold, ErrScheduledLocked},
		{StatusScheduled, StatusRejected, ErrScheduledLocked},
		{StatusRequested, Status("approved"), ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			repo := newMemRepository()
			repo.seed(1, tc.from)
			change, err := newTestService(repo, nil, nil).UpdateStatus(context.Background(), manager, 1, tc.to, "")
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
				assert.Equal(t, tc.from, repo.quotes[1].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.from, change.Previous)
			assert.Equal(t, tc.to, repo.quotes[1].Status)
		})
	}
}

func TestUpdateStatusSameIsNoop(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusScheduled)
	change, err := newTestService(repo, nil, nil).UpdateStatus(context.Background(), manager, 1, StatusScheduled, "")
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, change.Previous)
	assert.Equal(t, StatusScheduled, change.New)
}

func TestUpdateCannotRejectScheduledButCancelCan(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusScheduled)
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, manager, 1, UpdateRequest{Status: strPtr("rejected"), Notes: strPtr("cliente canceló")})
	require.ErrorIs(t, err, ErrScheduledLocked)
	assert.Equal(t, StatusScheduled, repo.quotes[1].Status)
	assert.Empty(t, repo.quotes[1].Notes)

	q, err := svc.CancelReservation(ctx, manager, 1, " cliente canceló ")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, q.Status)
	assert.Equal(t, "cliente canceló", q.CancelReason)
	assert.Equal(t, StatusRejected, repo.quotes[1].Status)
}

func TestUpdateAppliesWhitelistedFields(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusRequested)
	svc := newTestService(repo, nil, nil)
	people := 9

	q, err := svc.Update(context.Background(), manager, 1, UpdateRequest{
		NumberOfPeople: &people,
		ContactPhone:   strPtr(" 442 555 0101 "),
		ValidUntil:     strPtr("2024-06-30"),
		Status:         strPtr("Hold"),
	})
	require.NoError(t, err)
	assert.Equal(t, 9, q.NumberOfPeople)
	assert.Equal(t, "442 555 0101", q.ContactPhone)
	assert.Equal(t, StatusHold, q.Status)
	require.NotNil(t, q.ValidUntil)
	assert.Equal(t, "2024-06-30", q.ValidUntil.Format(time.DateOnly))
	assert.Equal(t, "1740", repo.quotes[1].ServiceItems.Total.String())

	_, err = svc.Update(context.Background(), manager, 1, UpdateRequest{Reason: "nada"})
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestUpdateClearsValidUntil(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusRequested)
	svc := newTestService(repo, nil, nil)

	q, err := svc.Update(context.Background(), manager, 1, UpdateRequest{ValidUntil: strPtr("2024-06-30")})
	require.NoError(t, err)
	require.NotNil(t, q.ValidUntil)

	q, err = svc.Update(context.Background(), manager, 1, UpdateRequest{ValidUntil: strPtr("  ")})
	require.NoError(t, err)
	assert.Nil(t, q.ValidUntil)
	assert.Nil(t, repo.quotes[1].ValidUntil)

	_, err = svc.Update(context.Background(), manager, 1, UpdateRequest{ValidUntil: strPtr("30/06/2024")})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCancelReservationRequiresScheduled(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusHold)
	_, err := newTestService(repo, nil, nil).CancelReservation(context.Background(), manager, 1, "")
	assert.ErrorIs(t, err, ErrNotScheduled)
	assert.Equal(t, StatusHold, repo.quotes[1].Status)
}

func TestRequestInvoiceSinglePending(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusScheduled)
	notifier := &recordingNotifier{}
	svc := newTestService(repo, nil, notifier)
	ctx := context.Background()

	inv, err := svc.RequestInvoice(ctx, manager, 1)
	require.NoError(t, err)
	assert.Equal(t, invoices.StatusPending, inv.Status)
	assert.Equal(t, "QT-2405-0001", inv.QuoteFolio)
	assert.Equal(t, "Gerente", inv.RequestedByName)
	assert.True(t, repo.quotes[1].InvoiceRequested)
	require.Len(t, notifier.requests, 1)

	_, err = svc.RequestInvoice(ctx, admin, 1)
	assert.ErrorIs(t, err, invoices.ErrPendingExists)
	assert.Equal(t, 1, repo.pendingCount(1))
	assert.Len(t, notifier.requests, 1)

	done := repo.invoices[inv.ID]
	done.Status = invoices.StatusCompleted
	repo.invoices[inv.ID] = done

	again, err := svc.RequestInvoice(ctx, admin, 1)
	require.NoError(t, err)
	assert.NotEqual(t, inv.ID, again.ID)
	assert.Equal(t, 1, repo.pendingCount(1))
	assert.Len(t, notifier.requests, 2)
}

func TestRequestInvoiceConcurrent(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusScheduled)
	svc := newTestService(repo, nil, nil)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RequestInvoice(context.Background(), manager, 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, repo.pendingCount(1))
}

func TestRequestInvoiceRequiresScheduled(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusRequested)
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	_, err := newTestService(repo, nil, notifier).RequestInvoice(context.Background(), manager, 1)
	assert.ErrorIs(t, err, ErrNotScheduled)
	assert.Empty(t, repo.invoices)
	assert.Empty(t, notifier.requests)
}

func TestRequestInvoiceNotifierFailureIgnored(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusScheduled)
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	_, err := newTestService(repo, nil, notifier).RequestInvoice(context.Background(), manager, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.pendingCount(1))
}

func TestCancelReservationCancelsPendingInvoice(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusScheduled)
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	inv, err := svc.RequestInvoice(ctx, manager, 1)
	require.NoError(t, err)

	q, err := svc.CancelReservation(ctx, manager, 1, "lluvia")
	require.NoError(t, err)
	assert.False(t, q.InvoiceRequested)
	assert.Nil(t, q.InvoiceRequestDate)
	assert.False(t, repo.quotes[1].InvoiceRequested)
	assert.Equal(t, invoices.StatusCancelled, repo.invoices[inv.ID].Status)
	assert.Equal(t, "lluvia", repo.invoices[inv.ID].CancelReason)
	assert.Zero(t, repo.pendingCount(1))
}

func TestSoftDeleteHidesQuote(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusRequested)
	svc := newTestService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.SoftDelete(ctx, admin, 1, "duplicada"))
	_, err := svc.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.SoftDelete(ctx, admin, 1, ""), ErrNotFound)

	rows, total, _, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, total)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	_, _, _, err := newTestService(newMemRepository(), nil, nil).List(context.Background(), ListFilters{Status: "approved"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGenerateReceipt(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusScheduled)
	renderer := &fakeRenderer{}
	svc := newTestService(repo, renderer, nil)
	ctx := context.Background()

	receipt, err := svc.GenerateReceipt(ctx, manager, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "recibo-QT-2405-0001.pdf", receipt.Filename)
	assert.True(t, len(receipt.PDF) > 0)
	assert.Equal(t, "%PDF", string(receipt.PDF[:4]))
	assert.Equal(t, "1740", renderer.last.Quote.ServiceItems.Total.String())
	assert.False(t, renderer.last.IncludePaymentInfo)
}

func TestGenerateReceiptPaymentInfo(t *testing.T) {
	yes, no := true, false
	cases := []struct {
		name     string
		actor    shared.Actor
		override *bool
		want     bool
	}{
		{"admin default", admin, nil, true},
		{"admin opts out", admin, &no, false},
		{"manager default", manager, nil, false},
		{"manager override ignored", manager, &yes, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepository()
			repo.seed(1, StatusScheduled)
			renderer := &fakeRenderer{}
			_, err := newTestService(repo, renderer, nil).GenerateReceipt(context.Background(), tc.actor, 1, tc.override)
			require.NoError(t, err)
			assert.Equal(t, tc.want, renderer.last.IncludePaymentInfo)
			assert.Equal(t, "BBVA", renderer.last.Payment.BankName)
		})
	}
}

func TestGenerateReceiptErrors(t *testing.T) {
	repo := newMemRepository()
	repo.seed(1, StatusHold)
	repo.seed(2, StatusScheduled)
	ctx := context.Background()

	_, err := newTestService(repo, &fakeRenderer{}, nil).GenerateReceipt(ctx, admin, 1, nil)
	assert.ErrorIs(t, err, ErrNotScheduled)

	_, err = newTestService(repo, &fakeRenderer{}, nil).GenerateReceipt(ctx, admin, 99, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = newTestService(repo, nil, nil).GenerateReceipt(ctx, admin, 2, nil)
	assert.Error(t, err)

	boom := errors.New("gotenberg unavailable")
	_, err = newTestService(repo, &fakeRenderer{err: boom}, nil).GenerateReceipt(ctx, admin, 2, nil)
	assert.ErrorIs(t, err, boom)
}
