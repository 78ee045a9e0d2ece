/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cosmos

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/tidwall/gjson"

	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

const valueParameter = "@value"

var sqlOperators = map[storagemodels.Operator]string{
	storagemodels.OpEqual:          "=",
	storagemodels.OpNotEqual:       "!=",
	storagemodels.OpLess:           "<",
	storagemodels.OpLessOrEqual:    "<=",
	storagemodels.OpGreater:        ">",
	storagemodels.OpGreaterOrEqual: ">=",
}

// renderCondition builds `SELECT * FROM c WHERE c["a"]["b"] <op> @value`.
// Field segments are quoted property accessors and the value is always a parameter.
func renderCondition(cond storagemodels.Condition) (string, []azcosmos.QueryParameter, error) {
	if err := cond.Validate(); err != nil {
		return "", nil, err
	}

	var path strings.Builder
	path.WriteString("c")
	for _, segment := range cond.Path() {
		path.WriteString("[")
		path.WriteString(strconv.Quote(segment))
		path.WriteString("]")
	}

	text := fmt.Sprintf("SELECT * FROM c WHERE %s %s %s", path.String(), sqlOperators[cond.Op], valueParameter)
	return text, []azcosmos.QueryParameter{{Name: valueParameter, Value: cond.Value}}, nil
}

// partitionKeyValue extracts the partition key for field from a JSON document
func partitionKeyValue(doc []byte, field string) (azcosmos.PartitionKey, error) {
	r := gjson.GetBytes(doc, field)
	switch r.Type {
	case gjson.String:
		return azcosmos.NewPartitionKeyString(r.Str), nil
	case gjson.Number:
		return azcosmos.NewPartitionKeyNumber(r.Num), nil
	case gjson.True, gjson.False:
		return azcosmos.NewPartitionKeyBool(r.Bool()), nil
	}
	if !r.Exists() {
		return azcosmos.PartitionKey{}, errors.NewValidationError(field, "item is missing its partition key")
	}
	return azcosmos.PartitionKey{}, errors.NewValidationError(field, "partition key must be a string, number or boolean")
}
