package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestEventTypeValid(t *testing.T) {
	assert.True(t, EventPurchaseCompleted.Valid())
	assert.True(t, EventAccessTime.Valid())
	assert.False(t, EventType("cart_abandoned").Valid())
	assert.False(t, EventType("").Valid())
}

func TestMetaReaders_JSONBNumbers(t *testing.T) {
	// numbers come back from jsonb as float64
	ev := Event{Metadata: datatypes.JSONMap{
		"product_id": float64(42),
		"quantity":   2.5,
		"list_id":    "l1",
	}}

	id, ok := ev.MetaUint64("product_id")
	require.True(t, ok)
	assert.Equal(t, uint64(42), id)

	qty, ok := ev.MetaFloat("quantity")
	require.True(t, ok)
	assert.Equal(t, 2.5, qty)

	listID, ok := ev.MetaString("list_id")
	require.True(t, ok)
	assert.Equal(t, "l1", listID)
}

func TestMetaReaders_TypedWritePath(t *testing.T) {
	ev := Event{Metadata: ItemAddedPayload{
		ListID:    "l1",
		ProductID: 7,
		Quantity:  3,
	}.Metadata()}

	id, ok := ev.MetaUint64("product_id")
	require.True(t, ok)
	assert.Equal(t, uint64(7), id)
}

func TestMetaReaders_MissingAndMistyped(t *testing.T) {
	ev := Event{Metadata: datatypes.JSONMap{
		"product_id": "not-a-number",
		"negative":   float64(-3),
	}}

	_, ok := ev.MetaUint64("product_id")
	assert.False(t, ok)

	_, ok = ev.MetaUint64("negative")
	assert.False(t, ok)

	_, ok = ev.MetaFloat("absent")
	assert.False(t, ok)

	_, ok = ev.MetaString("product_id")
	assert.True(t, ok)
}

func TestTelemetryError_Unwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := &TelemetryError{Op: "record", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "telemetry: record")

	var terr *TelemetryError
	assert.ErrorAs(t, error(err), &terr)
}
