package payment

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type baseWidget struct{ requests []Request }

func (w *baseWidget) RequestPayment(_ context.Context, req Request) error {
	w.requests = append(w.requests, req)
	return nil
}

type confirmingWidget struct {
	baseWidget
	confirm ConfirmFunc
}

func (w *confirmingWidget) SetConfirmMethod(fn ConfirmFunc) { w.confirm = fn }

var _ ExtendedWidget = (*confirmingWidget)(nil)

func TestExtend(t *testing.T) {
	_, err := Extend(&baseWidget{})
	assert.ErrorIs(t, err, ErrConfirmUnsupported)

	widget := &confirmingWidget{}
	ext, err := Extend(widget)
	require.NoError(t, err)

	ext.SetConfirmMethod(func(context.Context, json.RawMessage) (bool, error) { return true, nil })
	require.NotNil(t, widget.confirm)
	approved, err := widget.confirm(context.Background(), json.RawMessage(`{"amount":32000}`))
	require.NoError(t, err)
	assert.True(t, approved)

	require.NoError(t, ext.RequestPayment(context.Background(), Request{OrderID: "o-1", Amount: 32000}))
	assert.Len(t, widget.requests, 1)
}
