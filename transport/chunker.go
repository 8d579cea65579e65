package transport

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

const (
	// maxPayloadBytes is the serialized size above which an export is
	// split into batches.
	maxPayloadBytes = 5 << 20
	// batchSize is the fixed number of text units per batch.
	batchSize = 200
)

// SplitTexts cuts a text unit list into ordered fixed-size batches.
func SplitTexts(texts []TextUnit, size int) [][]TextUnit {
	if size <= 0 {
		size = batchSize
	}
	var out [][]TextUnit
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		out = append(out, texts[start:end])
	}
	return out
}

// TranslateChunked sends an export payload, splitting it into sequential
// batches when the serialized form exceeds the size limit. Batches are
// never sent concurrently; cross-batch ordering is guaranteed by send
// order.
//
// The last batch's response carries the authoritative frame/version/dir
// metadata. Text entries from earlier batch responses are merged in by
// nodeId (later batches win) rather than discarded, so the service is not
// required to aggregate batches server side.
func (c *Client) TranslateChunked(ctx context.Context, payload *ExportPayload) (*TranslationResult, error) {
	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if len(serialized) <= c.splitAbove {
		return c.Translate(ctx, payload)
	}

	batches := SplitTexts(payload.Texts, c.batchSize)
	c.log.Info("Export exceeds size limit, splitting", zap.String("lang", payload.Lang),
		zap.Int("bytes", len(serialized)), zap.Int("batches", len(batches)))

	var (
		last   *TranslationResult
		merged []TranslatedText
		seen   = make(map[string]int)
	)
	for i, batch := range batches {
		chunked := *payload
		chunked.Texts = batch
		chunked.Chunk = &Chunk{Index: i + 1, Total: len(batches)}
		// frame preview only travels with the first batch
		if i > 0 {
			chunked.Frame.Image = ""
		}

		result, err := c.Translate(ctx, &chunked)
		if err != nil {
			return nil, err
		}
		last = result
		for _, t := range result.Texts {
			if at, dup := seen[t.NodeID]; dup {
				merged[at] = t
				continue
			}
			seen[t.NodeID] = len(merged)
			merged = append(merged, t)
		}
	}

	last.Texts = merged
	return last, nil
}
