package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"student-agent/internal/domain"
	"student-agent/internal/interview"
)

const (
	skPrefixMsg = "MSG#"
	skProfile   = "PROFILE#"
	skMeta      = "META#"
	ttlDuration = 90 * 24 * time.Hour // conversation history kept for topic aggregation
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client stores student profiles and the conversation log in a single table
// keyed by STUDENT#<id>.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func studentPK(studentID string) string {
	return "STUDENT#" + studentID
}

func msgSK(ts time.Time) string {
	return skPrefixMsg + ts.UTC().Format(time.RFC3339Nano)
}

func (c *Client) key(studentID, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: studentPK(studentID)},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// LoadProfile returns the stored profile, or nil when the student has none.
func (c *Client) LoadProfile(ctx context.Context, studentID string) (domain.AnswerMap, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.tableName),
		Key:            c.key(studentID, skProfile),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: LoadProfile get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}

	profile := make(domain.AnswerMap, len(out.Item))
	for _, f := range interview.Fields() {
		if _, ok := out.Item[string(f.ID)]; !ok {
			continue
		}
		v, err := strAttr(out.Item, string(f.ID))
		if err != nil {
			return nil, fmt.Errorf("repository: LoadProfile decode: %w", err)
		}
		profile[f.ID] = v
	}
	return profile, nil
}

// UpsertProfile writes every schema field in one PutItem, replacing any
// previous profile.
func (c *Client) UpsertProfile(ctx context.Context, studentID string, answers domain.AnswerMap) error {
	if strings.TrimSpace(studentID) == "" {
		return errors.New("repository: UpsertProfile: student id is required")
	}
	item := c.key(studentID, skProfile)
	item["studentId"] = &types.AttributeValueMemberS{Value: studentID}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: c.now().UTC().Format(time.RFC3339)}
	for _, f := range interview.Fields() {
		v, ok := answers[f.ID]
		if !ok {
			v = interview.DefaultValue(f)
		}
		item[string(f.ID)] = &types.AttributeValueMemberS{Value: v}
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("repository: UpsertProfile: %w", err)
	}
	return nil
}

// AppendConversation writes one conversation entry and bumps the student's
// turn counter in a single transaction. Keys, timestamp and TTL are derived
// from the entry when unset.
func (c *Client) AppendConversation(ctx context.Context, entry domain.ConversationEntry) error {
	if strings.TrimSpace(entry.StudentID) == "" {
		return errors.New("repository: AppendConversation: student id is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now().UTC()
	}
	if entry.PK == "" {
		entry.PK = studentPK(entry.StudentID)
	}
	if entry.SK == "" {
		entry.SK = msgSK(entry.CreatedAt)
	}
	if entry.TTL == 0 {
		entry.TTL = entry.CreatedAt.Add(ttlDuration).Unix()
	}

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(c.tableName),
					Item:                conversationItem(entry),
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Update: &types.Update{
					TableName:        aws.String(c.tableName),
					Key:              c.key(entry.StudentID, skMeta),
					UpdateExpression: aws.String("ADD turns :one SET lastActivity = :now"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":one": &types.AttributeValueMemberN{Value: "1"},
						":now": &types.AttributeValueMemberS{Value: entry.CreatedAt.UTC().Format(time.RFC3339)},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: AppendConversation: %w", err)
	}
	return nil
}

// RecentConversation returns up to limit of the newest entries in
// chronological order.
func (c *Client) RecentConversation(ctx context.Context, studentID string, limit int) ([]domain.ConversationEntry, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: studentPK(studentID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixMsg},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	out, err := c.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("repository: RecentConversation query: %w", err)
	}
	if out == nil {
		return nil, nil
	}

	entries := make([]domain.ConversationEntry, 0, len(out.Items))
	for _, item := range out.Items {
		e, err := itemToConversation(item)
		if err != nil {
			return nil, fmt.Errorf("repository: RecentConversation unmarshal: %w", err)
		}
		entries = append(entries, e)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// ConversationTurns returns how many conversation entries the student has written.
func (c *Client) ConversationTurns(ctx context.Context, studentID string) (int, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key:       c.key(studentID, skMeta),
	})
	if err != nil {
		return 0, fmt.Errorf("repository: ConversationTurns get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return 0, nil
	}
	turns, err := intAttr(out.Item, "turns")
	if err != nil {
		return 0, fmt.Errorf("repository: ConversationTurns decode turns: %w", err)
	}
	return turns, nil
}

func conversationItem(e domain.ConversationEntry) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":          &types.AttributeValueMemberS{Value: e.PK},
		"SK":          &types.AttributeValueMemberS{Value: e.SK},
		"studentId":   &types.AttributeValueMemberS{Value: e.StudentID},
		"sessionId":   &types.AttributeValueMemberS{Value: e.SessionID},
		"userMessage": &types.AttributeValueMemberS{Value: e.UserMessage},
		"botReply":    &types.AttributeValueMemberS{Value: e.BotReply},
		"topic":       &types.AttributeValueMemberS{Value: e.Topic},
		"messageType": &types.AttributeValueMemberS{Value: e.MessageType},
		"createdAt":   &types.AttributeValueMemberS{Value: e.CreatedAt.UTC().Format(time.RFC3339Nano)},
		"ttl":         &types.AttributeValueMemberN{Value: strconv.FormatInt(e.TTL, 10)},
	}
}

func itemToConversation(item map[string]types.AttributeValue) (domain.ConversationEntry, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.ConversationEntry{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.ConversationEntry{}, err
	}
	userMessage, err := strAttr(item, "userMessage")
	if err != nil {
		return domain.ConversationEntry{}, err
	}
	botReply, _ := strAttr(item, "botReply")
	topic, _ := strAttr(item, "topic")
	messageType, _ := strAttr(item, "messageType")
	studentID, _ := strAttr(item, "studentId")
	sessionID, _ := strAttr(item, "sessionId")

	var createdAt time.Time
	if raw, err := strAttr(item, "createdAt"); err == nil {
		createdAt, _ = time.Parse(time.RFC3339Nano, raw)
	}

	return domain.ConversationEntry{
		PK:          pk,
		SK:          sk,
		StudentID:   studentID,
		SessionID:   sessionID,
		UserMessage: userMessage,
		BotReply:    botReply,
		Topic:       topic,
		MessageType: messageType,
		CreatedAt:   createdAt,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
