package sinks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSSinkPublishSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	sink := &sqsSink{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      discardLogger{},
	}

	err := sink.Publish(context.Background(), NewEvent("billing", "GET", "https://api.example.com", map[string]any{"result": nil}))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["profile_id"]
	if !ok || aws.ToString(attr.StringValue) != "billing" {
		t.Fatalf("profile_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"profile_id":"billing"`) {
		t.Fatalf("MessageBody missing profile_id: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSSinkPublishError(t *testing.T) {
	sink := &sqsSink{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   &fakeSQSClient{err: errors.New("boom")},
		log:      discardLogger{},
	}

	if err := sink.Publish(context.Background(), Event{ProfileID: "billing"}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestNewSQSSinkWithStaticCredentials(t *testing.T) {
	sink, err := newSQSSink(context.Background(), SinkConfig{
		ID:   "queue",
		Type: TypeSQS,
		SQS: &SQSSinkConfig{
			AWSConfig: AWSConfig{
				Region:          "eu-west-1",
				Endpoint:        "http://localhost:4566",
				AccessKeyID:     "test",
				SecretAccessKey: "test",
			},
			QueueURL: "http://localhost:4566/000000000000/results",
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSSink: %v", err)
	}
	if sink.Type() != TypeSQS || sink.ID() != "queue" {
		t.Fatalf("unexpected sink %s/%s", sink.Type(), sink.ID())
	}
}
