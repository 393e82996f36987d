package starter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/formsbot/internal/repo"
	"github.com/Alijeyrad/formsbot/internal/repo/repotest"
	"github.com/Alijeyrad/formsbot/internal/service/starter"
)

func rows(messageID string, labels ...string) []*repo.PublishedButton {
	var out []*repo.PublishedButton
	for i, l := range labels {
		out = append(out, &repo.PublishedButton{
			MessageID: messageID, ChannelID: "555", Position: i, Label: l, Style: 1, FormID: i + 1,
		})
	}
	return out
}

func TestRehydrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := repotest.New(t)
	require.NoError(t, db.CreatePublishedButtons(ctx, rows("1001", "Apply", "Appeal", "Report")))
	require.NoError(t, db.CreatePublishedButtons(ctx, rows("1002", "Join", "Leave")))

	reg := starter.NewRegistry()
	n, err := starter.Rehydrate(ctx, db, reg)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, reg.Len())

	n, err = starter.Rehydrate(ctx, db, reg)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, reg.Len())

	g, ok := reg.Group("1001")
	require.True(t, ok)
	require.Len(t, g.Buttons, 3)
	require.Equal(t, []string{"Apply", "Appeal", "Report"},
		[]string{g.Buttons[0].Label, g.Buttons[1].Label, g.Buttons[2].Label})

	b, ok := reg.Resolve("1002-1")
	require.True(t, ok)
	require.Equal(t, "Leave", b.Label)
	require.Equal(t, 2, b.FormID)
}

func TestGroupsKeepFirstSeenOrder(t *testing.T) {
	in := append(rows("9", "a"), rows("3", "b", "c")...)
	in = append(in, &repo.PublishedButton{MessageID: "9", Label: "d"})

	groups := starter.Groups(in)
	require.Len(t, groups, 2)
	require.Equal(t, "9", groups[0].MessageID)
	require.Len(t, groups[0].Buttons, 2)
	require.Equal(t, "3", groups[1].MessageID)
}

func TestResolveUnknown(t *testing.T) {
	reg := starter.NewRegistry()
	reg.Register(starter.Group{MessageID: "1", Buttons: []starter.Button{{Label: "x"}}})

	for _, id := range []string{"1-1", "2-0", "submission:abc:send", "-0", "1-x", "abc-0"} {
		_, ok := reg.Resolve(id)
		require.False(t, ok, id)
	}
}

func TestCustomIDRoundTrip(t *testing.T) {
	id := starter.CustomID("123456789012345678", 4)
	require.Equal(t, "123456789012345678-4", id)

	msg, pos, ok := starter.ParseCustomID(id)
	require.True(t, ok)
	require.Equal(t, "123456789012345678", msg)
	require.Equal(t, 4, pos)
}
