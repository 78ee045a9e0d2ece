/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cosmos

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

// feedToken is a _ts high-water mark. Seen lists "id:etag" of the documents
// already delivered at exactly TS, since _ts has one-second resolution.
type feedToken struct {
	TS   int64    `json:"ts"`
	Seen []string `json:"seen,omitempty"`
}

func decodeFeedToken(token string) (feedToken, error) {
	var ft feedToken
	if token == "" {
		return ft, nil
	}
	if err := json.Unmarshal([]byte(token), &ft); err != nil {
		return feedToken{}, errors.NewValidationError("continuation", fmt.Sprintf("malformed change feed token: %v", err))
	}
	return ft, nil
}

func (ft feedToken) encode() (string, error) {
	b, err := json.Marshal(ft)
	if err != nil {
		return "", fmt.Errorf("failed to encode change feed token: %w", err)
	}
	return string(b), nil
}

type feedDoc struct {
	raw []byte
	ts  int64
	id  string
	key string
}

// ReadChanges returns documents created or modified since token, ordered by
// modification time. Deletions are not reported.
func (c *Container) ReadChanges(ctx context.Context, token string, max int) (storagemodels.ChangePage, error) {
	state, err := decodeFeedToken(token)
	if err != nil {
		return storagemodels.ChangePage{}, err
	}

	raws, err := c.queryRaw(ctx, "read changes", "SELECT * FROM c WHERE c._ts >= @ts",
		[]azcosmos.QueryParameter{{Name: "@ts", Value: state.TS}})
	if err != nil {
		return storagemodels.ChangePage{}, err
	}
	return selectChanges(raws, state, max)
}

// selectChanges orders candidate documents, drops those already delivered and
// advances the token past the returned ones
func selectChanges(raws [][]byte, state feedToken, max int) (storagemodels.ChangePage, error) {
	docs := make([]feedDoc, 0, len(raws))
	for _, raw := range raws {
		res := gjson.GetManyBytes(raw, "_ts", "id", "_etag")
		d := feedDoc{raw: raw, ts: res[0].Int(), id: res[1].String()}
		d.key = d.id + ":" + res[2].String()

		if d.ts < state.TS || (d.ts == state.TS && lo.Contains(state.Seen, d.key)) {
			continue
		}
		docs = append(docs, d)
	}

	slices.SortFunc(docs, func(a, b feedDoc) int {
		if n := cmp.Compare(a.ts, b.ts); n != 0 {
			return n
		}
		return cmp.Compare(a.id, b.id)
	})
	if max > 0 && len(docs) > max {
		docs = docs[:max]
	}

	page := storagemodels.ChangePage{Items: make([]storagemodels.Item, 0, len(docs))}
	for _, d := range docs {
		item, err := storagemodels.DecodeItem(d.raw)
		if err != nil {
			return storagemodels.ChangePage{}, err
		}
		page.Items = append(page.Items, item)
	}

	next := state
	if len(docs) > 0 {
		last := docs[len(docs)-1].ts
		if last != state.TS {
			next = feedToken{TS: last}
		} else {
			next.Seen = slices.Clone(state.Seen)
		}
		for _, d := range docs {
			if d.ts == last {
				next.Seen = append(next.Seen, d.key)
			}
		}
	}

	token, err := next.encode()
	if err != nil {
		return storagemodels.ChangePage{}, err
	}
	page.Continuation = token
	return page, nil
}
