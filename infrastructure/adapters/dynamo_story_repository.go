package adapters

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"storybook-pipeline/application/ports/outbound"
	"storybook-pipeline/config"
	"storybook-pipeline/domain"
)

const storyMetaSortKey = "META"

type dynamoStoryMetaItem struct {
	StoryId   string             `dynamodbav:"story_id"`
	SortKey   string             `dynamodbav:"sk"`
	Title     string             `dynamodbav:"title"`
	Logline   string             `dynamodbav:"logline"`
	Status    domain.StoryStatus `dynamodbav:"status"`
	PageCount int                `dynamodbav:"page_count"`
}

type dynamoPageItem struct {
	StoryId     string        `dynamodbav:"story_id"`
	SortKey     string        `dynamodbav:"sk"`
	PageNumber  int           `dynamodbav:"page_number"`
	Title       string        `dynamodbav:"title"`
	ImagePrompt string        `dynamodbav:"image_prompt"`
	Timeline    []domain.Beat `dynamodbav:"timeline"`
	AudioUrl    string        `dynamodbav:"audio_url,omitempty"`
	ImageUrl    string        `dynamodbav:"image_url,omitempty"`
}

type dynamoStoryRepository struct {
	logger       outbound.LoggerPort
	dynamoSvc    *dynamodb.DynamoDB
	dynamoConfig *config.DynamoConfig
}

func NewDynamoStoryRepository(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB,
	dynamoConfig *config.DynamoConfig) outbound.StoryRepositoryPort {
	return &dynamoStoryRepository{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func pageSortKey(pageNumber int) string {
	return fmt.Sprintf("PAGE#%04d", pageNumber)
}

func (r *dynamoStoryRepository) SaveStory(ctx context.Context, story domain.Story) error {
	meta := dynamoStoryMetaItem{
		StoryId:   story.ID,
		SortKey:   storyMetaSortKey,
		Title:     story.Title,
		Logline:   story.Logline,
		Status:    domain.StoryStatusProcessing,
		PageCount: len(story.Pages),
	}
	if err := r.putItem(ctx, meta); err != nil {
		return err
	}

	for _, page := range story.Pages {
		item := dynamoPageItem{
			StoryId:     story.ID,
			SortKey:     pageSortKey(page.PageNumber),
			PageNumber:  page.PageNumber,
			Title:       page.Title,
			ImagePrompt: page.ImagePrompt,
			Timeline:    page.Timeline,
		}
		if err := r.putItem(ctx, item); err != nil {
			return err
		}
	}

	return nil
}

func (r *dynamoStoryRepository) putItem(ctx context.Context, item interface{}) error {
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to marshal story item", map[string]interface{}{
			"item": item,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(r.dynamoConfig.TableName),
	}

	_, err = r.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to save story item", map[string]interface{}{
			"item": item,
		})
		return err
	}

	return nil
}

func (r *dynamoStoryRepository) UpdatePage(ctx context.Context, storyID string, pageNumber int, urls outbound.PageAssetURLs) error {
	if urls.AudioURL == nil && urls.ImageURL == nil {
		return nil
	}

	expr := "SET "
	values := map[string]*dynamodb.AttributeValue{}
	if urls.AudioURL != nil {
		expr += "audio_url = :audio"
		values[":audio"] = &dynamodb.AttributeValue{S: urls.AudioURL}
	}
	if urls.ImageURL != nil {
		if urls.AudioURL != nil {
			expr += ", "
		}
		expr += "image_url = :image"
		values[":image"] = &dynamodb.AttributeValue{S: urls.ImageURL}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.dynamoConfig.TableName),
		Key: map[string]*dynamodb.AttributeValue{
			"story_id": {S: aws.String(storyID)},
			"sk":       {S: aws.String(pageSortKey(pageNumber))},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
	}

	_, err := r.dynamoSvc.UpdateItemWithContext(ctx, input)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to update page item", map[string]interface{}{
			"story_id":    storyID,
			"page_number": pageNumber,
		})
		return err
	}

	return nil
}

func (r *dynamoStoryRepository) SetStoryStatus(ctx context.Context, storyID string, status domain.StoryStatus) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.dynamoConfig.TableName),
		Key: map[string]*dynamodb.AttributeValue{
			"story_id": {S: aws.String(storyID)},
			"sk":       {S: aws.String(storyMetaSortKey)},
		},
		UpdateExpression: aws.String("SET #status = :status"),
		ExpressionAttributeNames: map[string]*string{
			"#status": aws.String("status"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":status": {S: aws.String(string(status))},
		},
	}

	_, err := r.dynamoSvc.UpdateItemWithContext(ctx, input)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to update story status", map[string]interface{}{
			"story_id": storyID,
			"status":   status,
		})
		return err
	}

	return nil
}

func (r *dynamoStoryRepository) GetStory(ctx context.Context, storyID string) (*domain.Story, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.dynamoConfig.TableName),
		KeyConditionExpression: aws.String("story_id = :story_id"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":story_id": {S: aws.String(storyID)},
		},
	}

	out, err := r.dynamoSvc.QueryWithContext(ctx, input)
	if err != nil {
		r.logger.ErrorWithFields(err, "Failed to query story items", map[string]interface{}{
			"story_id": storyID,
		})
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("story %s not found", storyID)
	}

	story := &domain.Story{ID: storyID}
	for _, raw := range out.Items {
		sortKey := ""
		if av, ok := raw["sk"]; ok && av.S != nil {
			sortKey = *av.S
		}

		if sortKey == storyMetaSortKey {
			var meta dynamoStoryMetaItem
			if err := dynamodbattribute.UnmarshalMap(raw, &meta); err != nil {
				return nil, err
			}
			story.Title = meta.Title
			story.Logline = meta.Logline
			continue
		}

		var item dynamoPageItem
		if err := dynamodbattribute.UnmarshalMap(raw, &item); err != nil {
			return nil, err
		}
		story.Pages = append(story.Pages, domain.Page{
			PageNumber:  item.PageNumber,
			Title:       item.Title,
			ImagePrompt: item.ImagePrompt,
			Timeline:    item.Timeline,
		})
	}

	return story, nil
}
