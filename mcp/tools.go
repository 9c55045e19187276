package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/yf-2009/veribuy/internal/history"
	"github.com/yf-2009/veribuy/internal/models"
	"github.com/yf-2009/veribuy/internal/pipeline"
	"github.com/yf-2009/veribuy/internal/platform"
	"github.com/yf-2009/veribuy/internal/session"
	"github.com/yf-2009/veribuy/internal/wishlist"
)

type toolset struct {
	sess     *session.Session
	searcher platform.Searcher
	pages    int
	logger   *zap.Logger
}

func newToolset(d Deps) *toolset {
	t := &toolset{sess: d.Session, searcher: d.Searcher, pages: d.Pages, logger: d.Logger}
	if t.sess == nil {
		t.sess = session.New(session.Options{Logger: d.Logger})
	}
	if t.pages < 1 {
		t.pages = 1
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

func filterOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("max_price",
			mcp.Description("Maximum price; blank or non-numeric means no limit"),
		),
		mcp.WithString("min_rating",
			mcp.Description("Minimum star rating; blank or non-numeric means 0"),
		),
		mcp.WithString("sort_by",
			mcp.Description("bestValue (default), lowest, highest or mostReviews"),
			mcp.Enum(string(models.SortBestValue), string(models.SortLowest), string(models.SortHighest), string(models.SortMostReviews)),
		),
		mcp.WithBoolean("strict",
			mcp.Description("Penalise missing rating and review signals more heavily (default: true)"),
		),
		mcp.WithBoolean("prefer_major",
			mcp.Description("List major retailers first"),
		),
	}
}

func registerTools(s *server.MCPServer, t *toolset) {
	searchOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Search shopping results, then trust-score, filter and rank them"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("pages",
			mcp.Description("Result pages to fetch (default from server config)"),
		),
	}, filterOptions()...)
	s.AddTool(mcp.NewTool("search_products", searchOpts...), t.handleSearch)

	filterOpts := append([]mcp.ToolOption{
		mcp.WithDescription("Re-apply filters and sort to the current results without searching again"),
	}, filterOptions()...)
	s.AddTool(mcp.NewTool("apply_filters", filterOpts...), t.handleApplyFilters)

	s.AddTool(mcp.NewTool("apply_coupon",
		mcp.WithDescription("Apply a coupon code to displayed prices; a blank code clears it"),
		mcp.WithString("code",
			mcp.Description("Coupon code, case-insensitive"),
		),
	), t.handleApplyCoupon)

	s.AddTool(mcp.NewTool("compare",
		mcp.WithDescription("Side-by-side comparison of the top ranked results"),
	), t.handleCompare)

	s.AddTool(mcp.NewTool("save_item",
		mcp.WithDescription("Save the result at a view index to the wishlist"),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based index into the current ranked view"),
		),
	), t.handleSaveItem)

	s.AddTool(mcp.NewTool("remove_saved",
		mcp.WithDescription("Remove a wishlist entry by its key"),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Entry key as returned by list_saved"),
		),
	), t.handleRemoveSaved)

	s.AddTool(mcp.NewTool("list_saved",
		mcp.WithDescription("List wishlist entries, newest first"),
	), t.handleListSaved)

	s.AddTool(mcp.NewTool("save_alert",
		mcp.WithDescription("Save the current filter settings as a named price alert"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Alert name"),
		),
	), t.handleSaveAlert)

	s.AddTool(mcp.NewTool("remove_alert",
		mcp.WithDescription("Delete a price alert by id"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Alert id"),
		),
	), t.handleRemoveAlert)

	s.AddTool(mcp.NewTool("list_alerts",
		mcp.WithDescription("List price alerts, newest first"),
	), t.handleListAlerts)

	s.AddTool(mcp.NewTool("price_history",
		mcp.WithDescription("Simulated 8-week price history for the result at a view index (demo data)"),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based index into the current ranked view"),
		),
	), t.handleHistory)
}

// viewItem is a ranked result as returned to MCP clients.
type viewItem struct {
	Index int `json:"index"`
	pipeline.Ranked
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
}

type viewResult struct {
	Count  int                 `json:"count"`
	Total  int                 `json:"total"`
	Filter models.FilterConfig `json:"filter"`
	Coupon *models.Coupon      `json:"coupon"`
	Items  []viewItem          `json:"items"`
}

func (t *toolset) view() viewResult {
	snap := t.sess.Snapshot()
	items := make([]viewItem, 0, len(snap.Items))
	for i, r := range snap.Items {
		it := viewItem{Index: i, Ranked: r}
		if p, ok := snap.Discounted(r.Product); ok {
			it.DiscountedPrice = &p
		}
		items = append(items, it)
	}
	return viewResult{
		Count:  len(items),
		Total:  snap.Total,
		Filter: snap.Filter,
		Coupon: snap.Coupon,
		Items:  items,
	}
}

func filterFrom(request mcp.CallToolRequest) models.FilterConfig {
	return models.ParseFilterConfig(
		request.GetString("max_price", ""),
		request.GetString("min_rating", ""),
		request.GetString("sort_by", ""),
		request.GetBool("strict", true),
		request.GetBool("prefer_major", false),
	)
}

func (t *toolset) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	if t.searcher == nil {
		return mcp.NewToolResultError("no search provider configured"), nil
	}
	pages := request.GetInt("pages", t.pages)

	products, err := platform.SearchPages(ctx, t.searcher, query, pages)
	if err != nil {
		t.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
	}

	t.sess.Replace(products)
	t.sess.SetFilter(filterFrom(request))
	return jsonResult(t.view())
}

func (t *toolset) handleApplyFilters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.sess.SetFilter(filterFrom(request))
	return jsonResult(t.view())
}

func (t *toolset) handleApplyCoupon(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := t.sess.ApplyCoupon(request.GetString("code", ""))
	return jsonResult(struct {
		Coupon *models.Coupon `json:"coupon"`
		Status string         `json:"status"`
		Items  []viewItem     `json:"items"`
	}{c, couponStatus(c), t.view().Items})
}

func couponStatus(c *models.Coupon) string {
	switch {
	case c == nil:
		return "cleared"
	case !c.Found:
		return c.Message
	case c.Message != "":
		return c.Message
	default:
		return "applied"
	}
}

func (t *toolset) handleCompare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.sess.Compare())
}

func (t *toolset) handleSaveItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := request.GetInt("index", -1)
	entry, added, err := t.sess.Save(index)
	if err != nil {
		return indexError(err)
	}
	return jsonResult(struct {
		Added bool           `json:"added"`
		Entry wishlist.Entry `json:"entry"`
	}{added, entry})
}

func (t *toolset) handleRemoveSaved(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := request.GetString("key", "")
	if raw == "" {
		return mcp.NewToolResultError("key is required"), nil
	}
	k, err := wishlist.ParseKey(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(struct {
		Removed bool `json:"removed"`
	}{t.sess.Unsave(k)})
}

func (t *toolset) handleListSaved(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.sess.Wishlist())
}

func (t *toolset) handleSaveAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := t.sess.SaveAlert(request.GetString("name", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a)
}

func (t *toolset) handleRemoveAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	return jsonResult(struct {
		Removed bool `json:"removed"`
	}{t.sess.RemoveAlert(id)})
}

func (t *toolset) handleListAlerts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.sess.Alerts())
}

type historyPoint struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
	Note  string  `json:"note"`
}

func (t *toolset) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, points, err := t.sess.History(request.GetInt("index", -1))
	if err != nil {
		return indexError(err)
	}
	out := make([]historyPoint, 0, len(points))
	for _, pt := range points {
		out = append(out, historyPoint{
			Date:  pt.Date.Format("2006-01-02"),
			Label: pt.Label(),
			Price: pt.Price,
			Note:  pt.Note,
		})
	}
	return jsonResult(struct {
		Title      string         `json:"title"`
		Simulated  bool           `json:"simulated"`
		Points     []historyPoint `json:"points"`
		PointCount int            `json:"pointCount"`
	}{p.Title, true, out, history.Points})
}

func indexError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, session.ErrIndexOutOfRange) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
