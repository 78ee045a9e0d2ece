/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/richie6280/docstore/storagemodels"
)

var filterOperators = map[storagemodels.Operator]string{
	storagemodels.OpEqual:          "=",
	storagemodels.OpNotEqual:       "<>",
	storagemodels.OpLess:           "<",
	storagemodels.OpLessOrEqual:    "<=",
	storagemodels.OpGreater:        ">",
	storagemodels.OpGreaterOrEqual: ">=",
}

// filterExpression is a Scan filter with every field name and value bound as a placeholder
type filterExpression struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

func (f filterExpression) scanInput(tableName string) *sdk.ScanInput {
	return &sdk.ScanInput{
		TableName:                 aws.String(tableName),
		FilterExpression:          aws.String(f.Expression),
		ExpressionAttributeNames:  f.Names,
		ExpressionAttributeValues: f.Values,
	}
}

// buildFilter renders cond as "#f0.#f1 <op> :v". Field segments never reach the
// expression text, so the condition cannot inject DynamoDB syntax.
func (d *Container) buildFilter(cond storagemodels.Condition) (filterExpression, error) {
	if err := cond.Validate(); err != nil {
		return filterExpression{}, err
	}
	op := filterOperators[cond.Op]

	path := cond.Path()
	if len(path) == 1 && path[0] == storagemodels.IDField && d.table.KeyAttribute != storagemodels.IDField {
		path = []string{d.table.KeyAttribute}
	}

	names := make(map[string]string, len(path))
	placeholders := make([]string, 0, len(path))
	for i, segment := range path {
		ph := fmt.Sprintf("#f%d", i)
		names[ph] = segment
		placeholders = append(placeholders, ph)
	}

	value, err := attributevalue.Marshal(cond.Value)
	if err != nil {
		return filterExpression{}, fmt.Errorf("failed to marshal condition value: %w", err)
	}

	return filterExpression{
		Expression: fmt.Sprintf("%s %s :v", strings.Join(placeholders, "."), op),
		Names:      names,
		Values:     map[string]types.AttributeValue{":v": value},
	}, nil
}
