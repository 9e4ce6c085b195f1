package listing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emilianohg/sitecrew/internal/listing"
)

type booking struct {
	ID     int
	Title  string
	Status string
}

func haystack(b booking) string { return b.Title }

var statusFacet = listing.Facet[booking]{
	Key:     "status",
	Label:   "Status",
	Options: []string{"pending", "approved", "rejected", "completed"},
	Match:   listing.Exact(func(b booking) string { return b.Status }),
}

func newController(size int) *listing.Controller[booking] {
	return listing.New(listing.Config[booking]{
		PageSize: size,
		Haystack: haystack,
		Facets:   []listing.Facet[booking]{statusFacet},
	})
}

func load(t *testing.T, c *listing.Controller[booking], items []booking) {
	t.Helper()
	_, gen := c.BeginLoad(context.Background())
	require.True(t, c.FinishLoad(gen, items, nil))
}

func numbered(n int) []booking {
	out := make([]booking, n)
	for i := range out {
		out[i] = booking{ID: i + 1, Title: "job", Status: "pending"}
	}
	return out
}

func ids(items []booking) []int {
	out := make([]int, 0, len(items))
	for _, b := range items {
		out = append(out, b.ID)
	}
	return out
}

func TestFilter_Idempotent(t *testing.T) {
	t.Parallel()

	items := []booking{
		{1, "Roof repair", "pending"},
		{2, "Kitchen", "approved"},
		{3, "ROOF tiles", "pending"},
		{4, "roofing", "rejected"},
	}
	facets := []listing.Facet[booking]{statusFacet}
	values := map[string]string{"status": "pending"}

	once := listing.Filter(items, "roof", haystack, facets, values)
	twice := listing.Filter(once, "roof", haystack, facets, values)

	require.Equal(t, []int{1, 3}, ids(once))
	require.Equal(t, once, twice)
}

func TestFilter_KeepsOrderAndIgnoresRemoteOnlyFacets(t *testing.T) {
	t.Parallel()

	items := []booking{{3, "c", "pending"}, {1, "a", "approved"}, {2, "b", "pending"}}
	remote := statusFacet
	remote.Remote = true
	remote.Match = nil

	got := listing.Filter(items, "  ", haystack, []listing.Facet[booking]{remote}, map[string]string{"status": "approved"})
	require.Equal(t, []int{3, 1, 2}, ids(got))
}

func TestFilter_RemoteFacetWithMatchStillApplies(t *testing.T) {
	t.Parallel()

	items := []booking{{3, "c", "pending"}, {1, "a", "approved"}, {2, "b", "rejected"}}
	remote := statusFacet
	remote.Remote = true
	unassigned := listing.Facet[booking]{Key: "unassigned", Remote: true}

	got := listing.Filter(items, "", haystack, []listing.Facet[booking]{remote, unassigned},
		map[string]string{"status": "pending", "unassigned": "1"})
	require.Equal(t, []int{3}, ids(got))
}

func TestFilter_Contains(t *testing.T) {
	t.Parallel()

	skills := listing.Facet[booking]{Key: "skill", Match: listing.Contains(func(b booking) string { return b.Title })}
	items := []booking{{1, "Welding, Carpentry", ""}, {2, "Plumbing", ""}}

	got := listing.Filter(items, "", haystack, []listing.Facet[booking]{skills}, map[string]string{"skill": "carp"})
	require.Equal(t, []int{1}, ids(got))
}

func TestPaginate_Boundaries(t *testing.T) {
	t.Parallel()

	items := numbered(23)

	require.Equal(t, 3, listing.TotalPages(len(items), 10))
	require.Len(t, listing.Paginate(items, 1, 10), 10)
	require.Len(t, listing.Paginate(items, 3, 10), 3)
	require.Equal(t, []int{21, 22, 23}, ids(listing.Paginate(items, 3, 10)))
	require.Empty(t, listing.Paginate(items, 4, 10))

	require.Equal(t, 1, listing.TotalPages(0, 10))
	require.Equal(t, 1, listing.TotalPages(10, 10))
	require.Equal(t, 2, listing.TotalPages(11, 10))
	require.Empty(t, listing.Paginate([]booking{}, 1, 10))
}

func TestController_PageControls(t *testing.T) {
	t.Parallel()

	c := newController(10)
	load(t, c, numbered(23))

	require.False(t, c.CanPrev())
	require.False(t, c.PrevPage())
	require.True(t, c.NextPage())
	require.True(t, c.NextPage())
	require.Equal(t, 3, c.Page())
	require.False(t, c.CanNext())
	require.False(t, c.NextPage())
	require.Len(t, c.PageItems(), 3)
}

func TestController_FilterChangeResetsPage(t *testing.T) {
	t.Parallel()

	c := newController(5)
	load(t, c, numbered(20))

	c.NextPage()
	c.NextPage()
	require.Equal(t, 3, c.Page())

	c.SetQuery("job")
	require.Equal(t, 1, c.Page())

	c.NextPage()
	c.SetQuery("job")
	require.Equal(t, 2, c.Page(), "same query is not a change")

	require.False(t, c.SetFacet("status", "pending"))
	require.Equal(t, 1, c.Page())

	c.NextPage()
	c.SetFacet("status", "pending")
	require.Equal(t, 2, c.Page())
}

func TestController_StatusFilterScenario(t *testing.T) {
	t.Parallel()

	c := newController(10)
	load(t, c, []booking{{1, "a", "pending"}, {2, "b", "approved"}, {3, "c", "pending"}})

	c.SetFacet("status", "pending")
	require.Equal(t, []int{1, 3}, ids(c.PageItems()))
	require.Equal(t, listing.Populated, c.State())

	c.SetFacet("status", "completed")
	require.Empty(t, c.PageItems())
	require.Equal(t, listing.Empty, c.State())
	require.Equal(t, 1, c.TotalPages())
}

func TestController_CycleFacet(t *testing.T) {
	t.Parallel()

	c := newController(10)
	want := []string{"pending", "approved", "rejected", "completed", ""}
	for _, v := range want {
		c.CycleFacet("status")
		require.Equal(t, v, c.FacetValue("status"))
	}
}

func TestController_RemoteFacetAsksForReload(t *testing.T) {
	t.Parallel()

	remote := statusFacet
	remote.Remote = true
	c := listing.New(listing.Config[booking]{Facets: []listing.Facet[booking]{remote}})

	require.True(t, c.SetFacet("status", "approved"))
	require.Equal(t, map[string]string{"status": "approved"}, c.RemoteParams())
	require.False(t, c.SetFacet("status", "approved"))
	require.True(t, c.SetFacet("status", ""))
	require.Empty(t, c.RemoteParams())
}

func TestController_StaleResponseIgnored(t *testing.T) {
	t.Parallel()

	c := newController(10)

	firstCtx, first := c.BeginLoad(context.Background())
	_, second := c.BeginLoad(context.Background())
	require.ErrorIs(t, firstCtx.Err(), context.Canceled)

	require.True(t, c.FinishLoad(second, []booking{{2, "new", "pending"}}, nil))
	require.False(t, c.FinishLoad(first, []booking{{1, "old", "pending"}}, nil))

	require.Equal(t, []int{2}, ids(c.Items()))
	require.Equal(t, listing.Populated, c.State())
}

func TestController_FailedLoadKeepsItems(t *testing.T) {
	t.Parallel()

	c := newController(10)
	load(t, c, []booking{{1, "a", "pending"}})

	_, gen := c.BeginLoad(context.Background())
	require.Equal(t, listing.Loading, c.State())

	boom := errors.New("down")
	require.True(t, c.FinishLoad(gen, nil, boom))
	require.Equal(t, listing.Failed, c.State())
	require.ErrorIs(t, c.Err(), boom)
	require.Equal(t, []int{1}, ids(c.Items()))

	load(t, c, nil)
	require.NoError(t, c.Err())
	require.Equal(t, listing.Empty, c.State())
}

func TestController_ReloadClampsPage(t *testing.T) {
	t.Parallel()

	c := newController(10)
	load(t, c, numbered(11))
	c.NextPage()

	load(t, c, numbered(10))
	require.Equal(t, 1, c.Page())
}

func TestController_StopInvalidatesLoad(t *testing.T) {
	t.Parallel()

	c := newController(10)
	ctx, gen := c.BeginLoad(context.Background())
	c.Stop()

	require.ErrorIs(t, ctx.Err(), context.Canceled)
	require.False(t, c.FinishLoad(gen, numbered(1), nil))
	require.False(t, c.Loading())
}

func TestController_Mutation(t *testing.T) {
	t.Parallel()

	c := newController(10)
	require.True(t, c.BeginMutation())
	require.False(t, c.BeginMutation())
	require.True(t, c.Processing())
	c.EndMutation()
	require.True(t, c.BeginMutation())
}
