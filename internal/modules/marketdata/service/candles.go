package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"sma_bot/internal/models"
)

const (
	maxCandlesLimit = 300 // /market/candles
	historyLimit    = 100 // /market/history-candles
)

type candlesResp struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

// GetCandles: последние limit закрытых свечей, по возрастанию времени.
func (c *Client) GetCandles(ctx context.Context, instID, bar string, limit int) ([]models.PriceBar, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxCandlesLimit {
		limit = maxCandlesLimit
	}
	okx, err := okxBar(bar)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("instId", instID)
	q.Set("bar", okx)
	q.Set("limit", strconv.Itoa(limit))

	rows, err := c.getRows(ctx, "/api/v5/market/candles", q)
	if err != nil {
		return nil, fmt.Errorf("okx candles %s: %w", instID, err)
	}
	return rowsToBars(instID, rows), nil
}

// HistoryCandles листает history-candles назад от текущего момента до since.
func (c *Client) HistoryCandles(ctx context.Context, instID, bar string, since time.Time) ([]models.PriceBar, error) {
	okx, err := okxBar(bar)
	if err != nil {
		return nil, err
	}

	var out []models.PriceBar
	after := ""
	for {
		q := url.Values{}
		q.Set("instId", instID)
		q.Set("bar", okx)
		q.Set("limit", strconv.Itoa(historyLimit))
		if after != "" {
			q.Set("after", after)
		}

		rows, err := c.getRows(ctx, "/api/v5/market/history-candles", q)
		if err != nil {
			return nil, fmt.Errorf("okx history %s: %w", instID, err)
		}
		if len(rows) == 0 {
			break
		}

		page := rowsToBars(instID, rows)
		reachedSince := false
		for _, b := range page {
			if b.Time.Before(since) {
				reachedSince = true
				continue
			}
			out = append(out, b)
		}

		// newest-first, последняя строка самая старая
		oldest := rows[len(rows)-1]
		if len(oldest) == 0 || oldest[0] == after || reachedSince {
			break
		}
		after = oldest[0]

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return dedupBars(out), nil
}

func (c *Client) getRows(ctx context.Context, path string, q url.Values) ([][]string, error) {
	u := c.restURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}

	var r candlesResp
	if err := sonic.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.Code != "0" {
		return nil, fmt.Errorf("okx error: code=%s msg=%s", r.Code, r.Msg)
	}
	return r.Data, nil
}

// OKX отдаёт newest-first → разворачиваем, чтобы прогрев шёл по времени.
func rowsToBars(instID string, rows [][]string) []models.PriceBar {
	out := make([]models.PriceBar, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if b, ok := parseRow(instID, rows[i]); ok {
			out = append(out, b)
		}
	}
	return out
}

func dedupBars(in []models.PriceBar) []models.PriceBar {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, b := range in[1:] {
		if b.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out
}
