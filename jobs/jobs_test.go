package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/amexing/amexing-ops/internal/jobs"
	"github.com/amexing/amexing-ops/internal/sales/invoices"
	"github.com/amexing/amexing-ops/internal/sales/quotes"
)

type recordingQueue struct {
	payloads []SendEmailPayload
	err      error
}

func (q *recordingQueue) EnqueueSendEmail(_ context.Context, payload SendEmailPayload) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, payload)
	return nil
}

type recordingMailer struct {
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestNewSendEmailTaskRequiresRecipients(t *testing.T) {
	_, err := NewSendEmailTask(SendEmailPayload{Subject: "hola"})
	require.Error(t, err)

	task, err := NewSendEmailTask(SendEmailPayload{To: []string{"a@amexing.mx"}, Subject: "hola", Body: "cuerpo"})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())
	assert.Contains(t, string(task.Payload()), `"subject":"hola"`)
}

func TestEmailJobDeliversAndTracks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	mailer := &recordingMailer{}
	job := &EmailJob{Mailer: mailer, Metrics: metrics}

	task, err := NewSendEmailTask(SendEmailPayload{To: []string{"facturacion@amexing.mx"}, Subject: "Solicitud", Body: "x"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"facturacion@amexing.mx"}, mailer.sent[0].To)

	mailer.err = errors.New("relay down")
	require.Error(t, job.Handle(context.Background(), task))

	count, err := testutil.GatherAndCount(reg, "amexing_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEmailJobSkipsRetryOnBadPayload(t *testing.T) {
	job := &EmailJob{Mailer: &recordingMailer{}}
	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, []byte(`{"to":[]}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSMTPMailerComposesMessage(t *testing.T) {
	var (
		gotAddr string
		gotAuth smtp.Auth
		gotTo   []string
		gotMsg  string
	)
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.local", Port: 2525, From: "noreply@amexing.mx"})
	m.now = func() time.Time { return time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC) }
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
		return nil
	}

	err := m.Send(context.Background(), Message{To: []string{"a@x.mx", "b@x.mx"}, Subject: "Prueba", Body: "línea 1\nlínea 2"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Nil(t, gotAuth)
	assert.Equal(t, []string{"a@x.mx", "b@x.mx"}, gotTo)
	assert.Contains(t, gotMsg, "To: a@x.mx, b@x.mx\r\n")
	assert.Contains(t, gotMsg, "Subject: Prueba\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "línea 1\r\nlínea 2"))
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.local", Port: 25})
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send should not be called")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{To: []string{"a@x.mx"}}), context.Canceled)
}

func TestEmailNotifierInvoiceRequested(t *testing.T) {
	queue := &recordingQueue{}
	n := NewEmailNotifier(queue, " facturacion@amexing.mx, ,ops@amexing.mx", nil)

	q := quotes.Quote{
		Folio:         "QT-2405-0001",
		ClientName:    "Hotel Casa Blanca",
		ContactPerson: "Ana",
		ContactEmail:  "ana@casablanca.mx",
		Currency:      "MXN",
		ServiceItems:  quotes.ServiceItems{Total: decimal.RequireFromString("1740")},
	}
	inv := invoices.Invoice{RequestedByName: "Admin", RequestDate: time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC)}
	require.NoError(t, n.InvoiceRequested(context.Background(), q, inv))

	require.Len(t, queue.payloads, 1)
	p := queue.payloads[0]
	assert.Equal(t, []string{"facturacion@amexing.mx", "ops@amexing.mx"}, p.To)
	assert.Equal(t, "Solicitud de factura QT-2405-0001", p.Subject)
	assert.Contains(t, p.Body, "Hotel Casa Blanca")
	assert.Contains(t, p.Body, "02/05/2024 16:00")
}

func TestEmailNotifierWithoutRecipientsIsNoop(t *testing.T) {
	queue := &recordingQueue{err: errors.New("should not enqueue")}
	n := NewEmailNotifier(queue, "", nil)
	require.NoError(t, n.InvoiceRequested(context.Background(), quotes.Quote{Folio: "QT-1"}, invoices.Invoice{}))
	require.NoError(t, n.InvoiceCompleted(context.Background(), invoices.Invoice{ID: 1}))
}

func TestEmailNotifierInvoiceCompleted(t *testing.T) {
	queue := &recordingQueue{}
	n := NewEmailNotifier(queue, "", nil)
	inv := invoices.Invoice{
		QuoteFolio:       "QT-2405-0001",
		ClientName:       "Hotel Casa Blanca",
		RequestedByEmail: "gerente@amexing.mx",
		InvoiceNumber:    "A-1029",
	}
	require.NoError(t, n.InvoiceCompleted(context.Background(), inv))
	require.Len(t, queue.payloads, 1)
	assert.Equal(t, []string{"gerente@amexing.mx"}, queue.payloads[0].To)
	assert.Contains(t, queue.payloads[0].Body, "A-1029")
	assert.NotContains(t, queue.payloads[0].Body, "Notas:")
}

func TestEmailNotifierPropagatesQueueError(t *testing.T) {
	queue := &recordingQueue{err: errors.New("redis down")}
	n := NewEmailNotifier(queue, "", nil)
	err := n.InvoiceCompleted(context.Background(), invoices.Invoice{RequestedByEmail: "a@x.mx"})
	assert.EqualError(t, err, "redis down")
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestHealthHandler(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		contains  string
	}{
		{name: "no inspector", status: http.StatusOK, contains: `"queue":"default"`},
		{name: "queue info", inspector: stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3}}, status: http.StatusOK, contains: `"pending":3`},
		{name: "redis down", inspector: stubInspector{err: errors.New("dial tcp")}, status: http.StatusServiceUnavailable, contains: "JOBS_UNAVAILABLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.contains)
		})
	}
}
