/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// fakeDynamo is a single-table stand-in for the DynamoDB API. It honours the
// attribute_exists / attribute_not_exists conditions the driver issues and
// returns every item from Scan, leaving filtering to the service.
type fakeDynamo struct {
	mu         sync.Mutex
	table      string
	keyAttr    string
	exists     bool
	streamARN  string
	items      map[string]map[string]types.AttributeValue
	err        error
	lastScan   *sdk.ScanInput
	lastCreate *sdk.CreateTableInput
	puts       int
}

func newFakeDynamo(table, keyAttr string) *fakeDynamo {
	return &fakeDynamo{
		table:   table,
		keyAttr: keyAttr,
		exists:  true,
		items:   make(map[string]map[string]types.AttributeValue),
	}
}

func (f *fakeDynamo) keyOf(av map[string]types.AttributeValue) string {
	if s, ok := av[f.keyAttr].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) check(table *string) error {
	if f.err != nil {
		return f.err
	}
	if !f.exists || aws.ToString(table) != f.table {
		return &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	}
	return nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *sdk.DescribeTableInput, _ ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(in.TableName); err != nil {
		return nil, err
	}
	desc := &types.TableDescription{TableName: in.TableName, TableStatus: types.TableStatusActive}
	if f.streamARN != "" {
		desc.LatestStreamArn = aws.String(f.streamARN)
	}
	return &sdk.DescribeTableOutput{Table: desc}, nil
}

func (f *fakeDynamo) CreateTable(ctx context.Context, in *sdk.CreateTableInput, _ ...func(*sdk.Options)) (*sdk.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.exists && aws.ToString(in.TableName) == f.table {
		return nil, &types.ResourceInUseException{Message: aws.String("Table already exists")}
	}
	f.table = aws.ToString(in.TableName)
	f.keyAttr = aws.ToString(in.KeySchema[0].AttributeName)
	f.exists = true
	f.lastCreate = in
	return &sdk.CreateTableOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(in.TableName); err != nil {
		return nil, err
	}
	f.lastScan = in
	out := &sdk.ScanOutput{}
	for _, it := range f.items {
		out.Items = append(out.Items, it)
	}
	return out, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(in.TableName); err != nil {
		return nil, err
	}
	return &sdk.GetItemOutput{Item: f.items[f.keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(in.TableName); err != nil {
		return nil, err
	}
	key := f.keyOf(in.Item)
	if err := f.evalCondition(in.ConditionExpression, key); err != nil {
		return nil, err
	}
	f.items[key] = in.Item
	f.puts++
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(in.TableName); err != nil {
		return nil, err
	}
	key := f.keyOf(in.Key)
	if err := f.evalCondition(in.ConditionExpression, key); err != nil {
		return nil, err
	}
	delete(f.items, key)
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) evalCondition(expr *string, key string) error {
	_, exists := f.items[key]
	failed := &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	switch aws.ToString(expr) {
	case "attribute_not_exists(#pk)":
		if exists {
			return failed
		}
	case "attribute_exists(#pk)":
		if !exists {
			return failed
		}
	}
	return nil
}

// fakeStreams serves fixed shard records. Iterators are "<shard>@<position>".
type fakeStreams struct {
	shardOrder []string
	shards     map[string][]streamtypes.Record
	trimmed    map[string]bool
	getRecords int
}

func newFakeStreams() *fakeStreams {
	return &fakeStreams{shards: map[string][]streamtypes.Record{}, trimmed: map[string]bool{}}
}

func (s *fakeStreams) add(shard string, event streamtypes.OperationType, seq int, image map[string]streamtypes.AttributeValue) {
	if _, ok := s.shards[shard]; !ok {
		s.shardOrder = append(s.shardOrder, shard)
	}
	s.shards[shard] = append(s.shards[shard], streamtypes.Record{
		EventName: event,
		Dynamodb: &streamtypes.StreamRecord{
			SequenceNumber: aws.String(fmt.Sprintf("%06d", seq)),
			NewImage:       image,
		},
	})
}

func (s *fakeStreams) DescribeStream(ctx context.Context, in *dynamodbstreams.DescribeStreamInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error) {
	desc := &streamtypes.StreamDescription{StreamArn: in.StreamArn}
	for _, id := range s.shardOrder {
		desc.Shards = append(desc.Shards, streamtypes.Shard{ShardId: aws.String(id)})
	}
	return &dynamodbstreams.DescribeStreamOutput{StreamDescription: desc}, nil
}

func (s *fakeStreams) GetShardIterator(ctx context.Context, in *dynamodbstreams.GetShardIteratorInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error) {
	shard := aws.ToString(in.ShardId)
	records, ok := s.shards[shard]
	if !ok {
		return nil, &streamtypes.ResourceNotFoundException{Message: aws.String("shard not found")}
	}

	pos := 0
	if in.ShardIteratorType == streamtypes.ShardIteratorTypeAfterSequenceNumber {
		if s.trimmed[shard] {
			return nil, &streamtypes.TrimmedDataAccessException{Message: aws.String("trimmed")}
		}
		seq := aws.ToString(in.SequenceNumber)
		for i, r := range records {
			if aws.ToString(r.Dynamodb.SequenceNumber) == seq {
				pos = i + 1
			}
		}
	}
	return &dynamodbstreams.GetShardIteratorOutput{ShardIterator: aws.String(fmt.Sprintf("%s@%d", shard, pos))}, nil
}

func (s *fakeStreams) GetRecords(ctx context.Context, in *dynamodbstreams.GetRecordsInput, _ ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error) {
	s.getRecords++
	shard, posText, _ := strings.Cut(aws.ToString(in.ShardIterator), "@")
	pos, _ := strconv.Atoi(posText)

	records := s.shards[shard]
	end := len(records)
	if in.Limit != nil && pos+int(*in.Limit) < end {
		end = pos + int(*in.Limit)
	}
	if pos > end {
		pos = end
	}
	return &dynamodbstreams.GetRecordsOutput{
		Records:           records[pos:end],
		NextShardIterator: aws.String(fmt.Sprintf("%s@%d", shard, end)),
	}, nil
}
