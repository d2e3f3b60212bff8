package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/lost-found-api/internal/domain"
)

type publishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Pusher fans stored notifications out to an SNS topic. Subscribers filter on
// the user_id message attribute.
type Pusher struct {
	client   publishAPI
	topicARN string
}

// NewClient builds an SNS client, honouring a region override when set.
func NewClient(awsCfg aws.Config, region string) *sns.Client {
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if region != "" {
			o.Region = region
		}
	})
}

func NewPusher(client publishAPI, topicARN string) *Pusher {
	return &Pusher{client: client, topicARN: topicARN}
}

type pushMessage struct {
	NotificationID string `json:"notification_id"`
	MatchID        string `json:"match_id"`
	Message        string `json:"message"`
}

func (p *Pusher) Push(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(pushMessage{
		NotificationID: n.NotificationID,
		MatchID:        n.MatchID,
		Message:        n.Message,
	})
	if err != nil {
		return fmt.Errorf("marshal push: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"user_id": {DataType: aws.String("String"), StringValue: aws.String(n.UserID)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
