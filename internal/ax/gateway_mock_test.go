package ax

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGatewayAttributesAndTree(t *testing.T) {
	gw := NewMockGateway()
	ctx := context.Background()

	parent := gw.NewElement("AXGroup", Attrs{AttrTitle: String("Group")})
	child := gw.NewElement("AXButton", Attrs{AttrTitle: String("OK")})
	gw.AppendChild(parent, child)

	got, err := gw.GetAttribute(ctx, child, AttrParent)
	require.NoError(t, err)
	require.Equal(t, KindElement, got.Kind)
	assert.True(t, got.Element.Equal(parent))

	kids, err := gw.GetAttribute(ctx, parent, AttrChildren)
	require.NoError(t, err)
	require.Len(t, kids.Array, 1)
	assert.True(t, kids.Array[0].Element.Equal(child))

	title, err := gw.GetAttribute(ctx, child, AttrTitle)
	require.NoError(t, err)
	assert.Equal(t, "OK", title.String)

	require.NoError(t, gw.SetAttribute(ctx, child, AttrTitle, String("Cancel")))
	title, err = gw.GetAttribute(ctx, child, AttrTitle)
	require.NoError(t, err)
	assert.Equal(t, "Cancel", title.String)
}

func TestMockGatewayInvalidElement(t *testing.T) {
	gw := NewMockGateway()
	_, err := gw.GetAttribute(context.Background(), Element{}, AttrTitle)
	var axErr *Error
	require.True(t, errors.As(err, &axErr))
	assert.Equal(t, InvalidElement, axErr.Kind)
}

func TestMockGatewayActions(t *testing.T) {
	gw := NewMockGateway()
	ctx := context.Background()
	el := gw.NewElement("AXButton", nil)
	gw.SetActions(el, []Action{{ID: "AXPress", Description: "press"}})

	require.NoError(t, gw.PerformAction(ctx, el, "AXPress"))
	require.Len(t, gw.Performed, 1)
	assert.Equal(t, "AXPress", gw.Performed[0].ActionID)

	err := gw.PerformAction(ctx, el, "AXScroll")
	var axErr *Error
	require.True(t, errors.As(err, &axErr))
	assert.Equal(t, ActionUnsupported, axErr.Kind)
}

func TestMockGatewayQueryParameterized(t *testing.T) {
	gw := NewMockGateway()
	ctx := context.Background()
	el := gw.NewElement("AXTextArea", nil)
	gw.SetQueryResult(el, QueryStringForRange, String("hello"))

	v, err := gw.QueryParameterized(ctx, el, QueryStringForRange, Rng(0, 5))
	require.NoError(t, err)
	assert.Equal(t, "hello", v.String)

	_, err = gw.QueryParameterized(ctx, el, QueryLineForIndex, Int64(0))
	var axErr *Error
	require.True(t, errors.As(err, &axErr))
	assert.Equal(t, NoValue, axErr.Kind)
}

func TestMockGatewayObserveAndEmit(t *testing.T) {
	gw := NewMockGateway()
	el := gw.NewElement("AXWindow", nil)

	obs, err := gw.Observe(el)
	require.NoError(t, err)
	require.NoError(t, obs.Subscribe(NotifyFocusedElementChanged))

	events := obs.Events()
	gw.Emit(Event{Kind: NotifyFocusedElementChanged, Subject: el})

	select {
	case ev := <-events:
		assert.Equal(t, NotifyFocusedElementChanged, ev.Kind)
	default:
		t.Fatal("expected an event to be delivered")
	}

	require.NoError(t, obs.Close())
	_, stillOpen := <-events
	assert.False(t, stillOpen, "events channel should be closed")
}

func TestMockGatewayDoubleSubscribeRejected(t *testing.T) {
	gw := NewMockGateway()
	el := gw.NewElement("AXWindow", nil)
	obs, err := gw.Observe(el)
	require.NoError(t, err)

	require.NoError(t, obs.Subscribe(NotifyElementDestroyed))
	err = obs.Subscribe(NotifyElementDestroyed)
	var axErr *Error
	require.True(t, errors.As(err, &axErr))
	assert.Equal(t, NotificationAlreadyRegistered, axErr.Kind)
}

func TestMockGatewayDump(t *testing.T) {
	gw := NewMockGateway()
	ctx := context.Background()
	parent := gw.NewElement("AXGroup", Attrs{AttrTitle: String("Group")})
	child := gw.NewElement("AXButton", Attrs{AttrTitle: String("OK")})
	gw.AppendChild(parent, child)

	dump, err := gw.Dump(ctx, parent, false, true)
	require.NoError(t, err)
	assert.Equal(t, "Group", dump.Attributes[AttrTitle].String)
	require.Len(t, dump.Children, 1)
	assert.Equal(t, "OK", dump.Children[0].Attributes[AttrTitle].String)
}

func TestMockGatewayConfirmTrusted(t *testing.T) {
	gw := NewMockGateway()
	assert.True(t, gw.ConfirmTrusted())
	gw.SetTrusted(false)
	assert.False(t, gw.ConfirmTrusted())
}
