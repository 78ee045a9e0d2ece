/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cosmos

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

func doc(id string, ts int64, etag string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"_ts":%d,"_etag":%q}`, id, ts, etag))
}

func changeIDs(page storagemodels.ChangePage) []string {
	out := make([]string, 0, len(page.Items))
	for _, it := range page.Items {
		out = append(out, it.ID())
	}
	return out
}

func TestSelectChanges(t *testing.T) {
	raws := [][]byte{
		doc("c", 20, "e1"),
		doc("a", 10, "e1"),
		doc("b", 20, "e1"),
	}

	page, err := selectChanges(raws, feedToken{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, changeIDs(page))

	state, err := decodeFeedToken(page.Continuation)
	require.NoError(t, err)
	assert.Equal(t, feedToken{TS: 20, Seen: []string{"b:e1"}}, state)

	// The service returns everything at or after ts 20 again.
	page, err = selectChanges([][]byte{doc("b", 20, "e1")}, state, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	page, err = selectChanges([][]byte{doc("b", 20, "e1"), doc("c", 20, "e1")}, state, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, changeIDs(page))

	state, err = decodeFeedToken(page.Continuation)
	require.NoError(t, err)
	assert.Equal(t, feedToken{TS: 20, Seen: []string{"b:e1", "c:e1"}}, state)
}

func TestSelectChangesRedeliversModifiedDocument(t *testing.T) {
	state := feedToken{TS: 20, Seen: []string{"b:e1"}}

	page, err := selectChanges([][]byte{doc("b", 20, "e2")}, state, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, changeIDs(page), "a new etag within the same second is a new change")
}

func TestSelectChangesEmptyKeepsToken(t *testing.T) {
	state := feedToken{TS: 5, Seen: []string{"a:e1"}}
	page, err := selectChanges(nil, state, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	again, err := decodeFeedToken(page.Continuation)
	require.NoError(t, err)
	assert.Equal(t, state, again)
}

func TestDecodeFeedToken(t *testing.T) {
	ft, err := decodeFeedToken("")
	require.NoError(t, err)
	assert.Equal(t, feedToken{}, ft)

	_, err = decodeFeedToken("not-json")
	assert.True(t, errors.IsValidationError(err))
}
