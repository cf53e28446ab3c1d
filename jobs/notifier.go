package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/amexing/amexing-ops/internal/sales/invoices"
	"github.com/amexing/amexing-ops/internal/sales/quotes"
)

// Enqueuer hands email tasks to the queue.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) error
}

// EmailNotifier turns invoice workflow events into queued emails.
type EmailNotifier struct {
	queue   Enqueuer
	billing []string
	logger  *slog.Logger
	printer *message.Printer
}

// NewEmailNotifier constructs an EmailNotifier. billing is the comma
// separated list of addresses told about new invoice requests.
func NewEmailNotifier(queue Enqueuer, billing string, logger *slog.Logger) *EmailNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{
		queue:   queue,
		billing: splitAddresses(billing),
		logger:  logger,
		printer: message.NewPrinter(language.MustParse("es-MX")),
	}
}

// InvoiceRequested notifies billing that a scheduled quote needs an invoice.
func (n *EmailNotifier) InvoiceRequested(ctx context.Context, q quotes.Quote, inv invoices.Invoice) error {
	if len(n.billing) == 0 {
		n.logger.DebugContext(ctx, "no billing recipients configured", slog.String("folio", q.Folio))
		return nil
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Se registró una solicitud de factura para la cotización %s.\n\n", q.Folio)
	fmt.Fprintf(&body, "Cliente: %s\n", q.ClientName)
	fmt.Fprintf(&body, "Contacto: %s <%s>\n", q.ContactPerson, q.ContactEmail)
	body.WriteString(n.printer.Sprintf("Total: $%.2f %s\n", q.ServiceItems.Total.InexactFloat64(), q.Currency))
	fmt.Fprintf(&body, "Solicitada por: %s\n", inv.RequestedByName)
	fmt.Fprintf(&body, "Fecha: %s\n", inv.RequestDate.Format("02/01/2006 15:04"))
	return n.queue.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      n.billing,
		Subject: "Solicitud de factura " + q.Folio,
		Body:    body.String(),
	})
}

// InvoiceCompleted tells the requester the invoice number that was issued.
func (n *EmailNotifier) InvoiceCompleted(ctx context.Context, inv invoices.Invoice) error {
	if inv.RequestedByEmail == "" {
		n.logger.DebugContext(ctx, "invoice requester has no email", slog.Int64("id", inv.ID))
		return nil
	}
	var body strings.Builder
	fmt.Fprintf(&body, "La factura de la cotización %s fue emitida.\n\n", inv.QuoteFolio)
	fmt.Fprintf(&body, "Cliente: %s\n", inv.ClientName)
	fmt.Fprintf(&body, "Número de factura: %s\n", inv.InvoiceNumber)
	if inv.Notes != "" {
		fmt.Fprintf(&body, "Notas: %s\n", inv.Notes)
	}
	if inv.ProcessedByName != "" {
		fmt.Fprintf(&body, "Procesada por: %s\n", inv.ProcessedByName)
	}
	return n.queue.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      []string{inv.RequestedByEmail},
		Subject: "Factura emitida " + inv.QuoteFolio,
		Body:    body.String(),
	})
}

func splitAddresses(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
