package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/documentor-api/internal/domain"
)

// emailClaim reserves an email address for one user. Its table is keyed by
// email, which makes uniqueness a conditional write.
type emailClaim struct {
	Email  string `dynamodbav:"email"`
	UserID string `dynamodbav:"user_id"`
}

// UserRepo stores users and keeps the email reservation table in step.
type UserRepo struct {
	api         API
	users       table[domain.User]
	emailsTable string
}

func NewUserRepo(api API, usersTable, emailsTable string) *UserRepo {
	return &UserRepo{
		api: api,
		users: table[domain.User]{
			api:         api,
			name:        usersTable,
			entity:      "user",
			pk:          "user_id",
			search:      []string{"full_name", "email"},
			defaultSort: "-created_at",
			touch:       true,
		},
		emailsTable: emailsTable,
	}
}

// Create writes the user and its email reservation atomically. A taken
// email yields domain.ErrDuplicateEmail.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	userItem, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	claimItem, err := attributevalue.MarshalMap(emailClaim{Email: u.Email, UserID: u.UserID})
	if err != nil {
		return fmt.Errorf("marshal email claim: %w", err)
	}
	_, err = r.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.users.name),
				Item:                userItem,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.emailsTable),
				Item:                claimItem,
				ConditionExpression: aws.String("attribute_not_exists(email)"),
			}},
		},
	})
	return mapUserTxError(err, domain.ErrConflict)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := r.users.get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrUserNotFound)
	}
	return u, err
}

// GetByEmail resolves the reservation with a consistent read, so a user is
// visible immediately after Create.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.emailsTable),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user with email: %w", domain.ErrUserNotFound)
	}
	var claim emailClaim
	if err := attributevalue.UnmarshalMap(out.Item, &claim); err != nil {
		return nil, fmt.Errorf("unmarshal email claim: %w", err)
	}
	return r.Get(ctx, claim.UserID)
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) (*domain.User, error) {
	u, err := r.users.update(ctx, userID, updates)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrUserNotFound)
	}
	return u, err
}

// ChangeEmail moves the reservation from oldEmail to newEmail and updates the
// user in one transaction.
func (r *UserRepo) ChangeEmail(ctx context.Context, userID, oldEmail, newEmail string) error {
	claimItem, err := attributevalue.MarshalMap(emailClaim{Email: newEmail, UserID: userID})
	if err != nil {
		return fmt.Errorf("marshal email claim: %w", err)
	}
	now, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = r.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:           aws.String(r.users.name),
				Key:                 strKey(fieldUserID, userID),
				UpdateExpression:    aws.String("SET email = :e, updated_at = :t"),
				ConditionExpression: aws.String("attribute_exists(user_id)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":e": &types.AttributeValueMemberS{Value: newEmail},
					":t": now,
				},
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.emailsTable),
				Item:                claimItem,
				ConditionExpression: aws.String("attribute_not_exists(email)"),
			}},
			{Delete: &types.Delete{
				TableName:           aws.String(r.emailsTable),
				Key:                 strKey(fieldEmail, oldEmail),
				ConditionExpression: aws.String("user_id = :u"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":u": &types.AttributeValueMemberS{Value: userID},
				},
			}},
		},
	})
	return mapUserTxError(err, domain.ErrUserNotFound)
}

// Delete removes the user and releases their email.
func (r *UserRepo) Delete(ctx context.Context, u *domain.User) error {
	_, err := r.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.users.name),
				Key:                 strKey(fieldUserID, u.UserID),
				ConditionExpression: aws.String("attribute_exists(user_id)"),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.emailsTable),
				Key:       strKey(fieldEmail, u.Email),
			}},
		},
	})
	return mapUserTxError(err, domain.ErrUserNotFound)
}

func (r *UserRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.User, int, error) {
	return r.users.list(ctx, q)
}

func (r *UserRepo) Count(ctx context.Context, filters map[string]any) (int, error) {
	return r.users.count(ctx, filters)
}

// mapUserTxError turns a cancelled user transaction into a domain error.
// Item 0 is always the user row and item 1 the new email reservation.
func mapUserTxError(err error, userErr error) error {
	if err == nil {
		return nil
	}
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return err
	}
	for i, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
			continue
		}
		switch i {
		case 0:
			return fmt.Errorf("user: %w", userErr)
		case 1:
			return domain.ErrDuplicateEmail
		default:
			return fmt.Errorf("email reservation out of sync: %w", domain.ErrConflict)
		}
	}
	return err
}
