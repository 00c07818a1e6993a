package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/uconn-hacklab/inventory-tracking/services/inventory/domain/models"
)

const instrumentationName = "github.com/uconn-hacklab/inventory-tracking/services/inventory"

type instruments struct {
	tracer           trace.Tracer
	itemsRegistered  metric.Int64Counter
	txnsRecorded     metric.Int64Counter
	quantityByMethod metric.Int64Counter
}

func newInstruments() (*instruments, error) {
	meter := otel.Meter(instrumentationName)

	itemsRegistered, err := meter.Int64Counter("inventory.items.registered",
		metric.WithDescription("Items registered in the ledger"),
		metric.WithUnit("{item}"))
	if err != nil {
		return nil, fmt.Errorf("create items counter: %w", err)
	}

	txnsRecorded, err := meter.Int64Counter("inventory.transactions.recorded",
		metric.WithDescription("Transactions appended, by method"),
		metric.WithUnit("{transaction}"))
	if err != nil {
		return nil, fmt.Errorf("create transactions counter: %w", err)
	}

	quantityByMethod, err := meter.Int64Counter("inventory.transactions.quantity",
		metric.WithDescription("Units moved by recorded transactions, by method"),
		metric.WithUnit("{unit}"))
	if err != nil {
		return nil, fmt.Errorf("create quantity counter: %w", err)
	}

	return &instruments{
		tracer:           otel.Tracer(instrumentationName),
		itemsRegistered:  itemsRegistered,
		txnsRecorded:     txnsRecorded,
		quantityByMethod: quantityByMethod,
	}, nil
}

func (in *instruments) start(ctx context.Context, op string, itemID fmt.Stringer) (context.Context, trace.Span) {
	ctx, span := in.tracer.Start(ctx, "ledger."+op)
	if itemID != nil {
		span.SetAttributes(attribute.String("item.uuid", itemID.String()))
	}
	return ctx, span
}

func (in *instruments) recordTransaction(ctx context.Context, t *models.Transaction) {
	attrs := metric.WithAttributes(attribute.String("method", t.Method.String()))
	in.txnsRecorded.Add(ctx, 1, attrs)
	in.quantityByMethod.Add(ctx, t.Quantity, attrs)
}

// fail marks span as errored and returns err unchanged.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
