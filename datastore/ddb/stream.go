/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"

	"github.com/richie6280/docstore/errors"
	"github.com/richie6280/docstore/storagemodels"
)

// maxEmptyReads bounds how many empty GetRecords pages are followed per shard and poll
const maxEmptyReads = 5

// maxRecordsPerRead is the GetRecords limit enforced by the service
const maxRecordsPerRead = 1000

// streamToken is the continuation for a table stream: the last sequence number
// consumed on every shard seen so far
type streamToken struct {
	StreamARN string            `json:"arn,omitempty"`
	Shards    map[string]string `json:"shards,omitempty"`
}

func decodeStreamToken(token string) (streamToken, error) {
	st := streamToken{Shards: map[string]string{}}
	if token == "" {
		return st, nil
	}
	if err := json.Unmarshal([]byte(token), &st); err != nil {
		return streamToken{}, errors.NewValidationError("continuation", fmt.Sprintf("malformed stream token: %v", err))
	}
	if st.Shards == nil {
		st.Shards = map[string]string{}
	}
	return st, nil
}

func (st streamToken) encode() (string, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("failed to encode stream token: %w", err)
	}
	return string(b), nil
}

// ReadChanges reads the table's DynamoDB stream from token. The table must have
// a stream with NEW_IMAGE or NEW_AND_OLD_IMAGES. Deletions are not reported.
func (d *Container) ReadChanges(ctx context.Context, token string, max int) (storagemodels.ChangePage, error) {
	if d.client.streams == nil {
		return storagemodels.ChangePage{}, errors.NewUnsupportedError(DriverName, "change feed without a streams client")
	}

	state, err := decodeStreamToken(token)
	if err != nil {
		return storagemodels.ChangePage{}, err
	}

	arn, err := d.streamARN(ctx)
	if err != nil {
		return storagemodels.ChangePage{}, err
	}
	if state.StreamARN != arn {
		// Stream was re-enabled; old sequence numbers are meaningless.
		state = streamToken{StreamARN: arn, Shards: map[string]string{}}
	}

	shards, err := d.listShards(ctx, arn)
	if err != nil {
		return storagemodels.ChangePage{}, err
	}

	page := storagemodels.ChangePage{Items: []storagemodels.Item{}}
	for _, shardID := range shards {
		remaining := maxRecordsPerRead
		if max > 0 {
			remaining = max - len(page.Items)
			if remaining <= 0 {
				break
			}
		}

		items, last, err := d.readShard(ctx, arn, shardID, state.Shards[shardID], remaining)
		if err != nil {
			return storagemodels.ChangePage{}, err
		}
		page.Items = append(page.Items, items...)
		if last != "" {
			state.Shards[shardID] = last
		}
	}

	page.Continuation, err = state.encode()
	if err != nil {
		return storagemodels.ChangePage{}, err
	}
	return page, nil
}

func (d *Container) streamARN(ctx context.Context) (string, error) {
	out, err := d.client.api.DescribeTable(ctx, &sdk.DescribeTableInput{
		TableName: aws.String(d.table.TableName),
	})
	if err != nil {
		return "", d.mapError("describe table", "", err)
	}
	if out.Table == nil || aws.ToString(out.Table.LatestStreamArn) == "" {
		return "", errors.NewUnsupportedError(DriverName, "change feed on table "+d.table.TableName+" without a stream")
	}
	return aws.ToString(out.Table.LatestStreamArn), nil
}

func (d *Container) listShards(ctx context.Context, arn string) ([]string, error) {
	var shards []string
	var start *string
	for {
		out, err := d.client.streams.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
			StreamArn:             aws.String(arn),
			ExclusiveStartShardId: start,
		})
		if err != nil {
			return nil, errors.NewRemoteError("describe stream", err)
		}
		if out.StreamDescription == nil {
			return shards, nil
		}
		for _, s := range out.StreamDescription.Shards {
			shards = append(shards, aws.ToString(s.ShardId))
		}
		start = out.StreamDescription.LastEvaluatedShardId
		if start == nil {
			return shards, nil
		}
	}
}

// readShard returns up to limit changed items after sequence number after, and
// the last sequence number consumed (including skipped deletions)
func (d *Container) readShard(ctx context.Context, arn, shardID, after string, limit int) ([]storagemodels.Item, string, error) {
	iterator, err := d.shardIterator(ctx, arn, shardID, after)
	if err != nil {
		var rnf *streamtypes.ResourceNotFoundException
		if stderrors.As(err, &rnf) {
			return nil, "", nil
		}
		return nil, "", err
	}

	var items []storagemodels.Item
	last := ""
	for reads := 0; iterator != nil && reads < maxEmptyReads; reads++ {
		out, err := d.client.streams.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
			ShardIterator: iterator,
			Limit:         aws.Int32(int32(min(limit, maxRecordsPerRead))),
		})
		if err != nil {
			return nil, "", errors.NewRemoteError("get records", err)
		}

		for _, rec := range out.Records {
			if rec.Dynamodb == nil {
				continue
			}
			last = aws.ToString(rec.Dynamodb.SequenceNumber)
			if rec.EventName == streamtypes.OperationTypeRemove {
				continue
			}
			if rec.Dynamodb.NewImage == nil {
				return nil, "", errors.NewUnsupportedError(DriverName, "change feed on a stream without NEW_IMAGE")
			}
			item, err := d.decodeStreamImage(rec.Dynamodb.NewImage)
			if err != nil {
				return nil, "", err
			}
			items = append(items, item)
		}

		if len(out.Records) > 0 {
			break
		}
		iterator = out.NextShardIterator
	}
	return items, last, nil
}

func (d *Container) shardIterator(ctx context.Context, arn, shardID, after string) (*string, error) {
	input := &dynamodbstreams.GetShardIteratorInput{
		StreamArn:         aws.String(arn),
		ShardId:           aws.String(shardID),
		ShardIteratorType: streamtypes.ShardIteratorTypeTrimHorizon,
	}
	if after != "" {
		input.ShardIteratorType = streamtypes.ShardIteratorTypeAfterSequenceNumber
		input.SequenceNumber = aws.String(after)
	}

	out, err := d.client.streams.GetShardIterator(ctx, input)
	if err != nil {
		var trimmed *streamtypes.TrimmedDataAccessException
		if after != "" && stderrors.As(err, &trimmed) {
			// Checkpoint is older than the 24h retention; restart from the oldest record.
			return d.shardIterator(ctx, arn, shardID, "")
		}
		var rnf *streamtypes.ResourceNotFoundException
		if stderrors.As(err, &rnf) {
			return nil, err
		}
		return nil, errors.NewRemoteError("get shard iterator", err)
	}
	return out.ShardIterator, nil
}

func (d *Container) decodeStreamImage(image map[string]streamtypes.AttributeValue) (storagemodels.Item, error) {
	av, err := attributevalue.FromDynamoDBStreamsMap(image)
	if err != nil {
		return nil, fmt.Errorf("failed to convert stream image: %w", err)
	}
	return d.decode(av)
}
