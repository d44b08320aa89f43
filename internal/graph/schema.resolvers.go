package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/hmans/posts/internal/event"
	"github.com/hmans/posts/internal/graph/model"
	"github.com/hmans/posts/internal/post"
	"github.com/hmans/posts/internal/store"
)

// CreatePost is the resolver for the createPost field.
func (r *mutationResolver) CreatePost(ctx context.Context, input model.PostInput) (*post.Post, error) {
	saved, err := r.Repo.Save(ctx, post.FromInput(input.ToInput()))
	if err != nil {
		return nil, err
	}

	r.log(ctx).Info("created post", "id", saved.ID)
	r.publish(event.Created, saved.ID, saved)
	return saved, nil
}

// UpdatePost is the resolver for the updatePost field.
func (r *mutationResolver) UpdatePost(ctx context.Context, id string, input model.PostInput) (*post.Post, error) {
	p, err := r.Repo.FindByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("post %s not found: %w", id, err)
		}
		return nil, err
	}

	p.Apply(input.ToInput())
	saved, err := r.Repo.Save(ctx, p)
	if err != nil {
		return nil, err
	}

	r.log(ctx).Info("updated post", "id", saved.ID)
	r.publish(event.Updated, saved.ID, saved)
	return saved, nil
}

// DeletePost is the resolver for the deletePost field.
func (r *mutationResolver) DeletePost(ctx context.Context, id string) (*string, error) {
	if _, err := r.Repo.FindByID(ctx, id); err != nil {
		if store.IsNotFound(err) {
			return nil, fmt.Errorf("post %s not found: %w", id, err)
		}
		return nil, err
	}

	if err := r.Repo.DeleteByID(ctx, id); err != nil {
		if store.IsNotFound(err) {
			// Deleted by someone else since the lookup
			return nil, fmt.Errorf("post %s not found: %w", id, err)
		}
		return nil, err
	}

	r.log(ctx).Info("deleted post", "id", id)
	r.publish(event.Deleted, id, nil)
	return &id, nil
}

// Posts is the resolver for the posts field.
func (r *queryResolver) Posts(ctx context.Context) ([]*post.Post, error) {
	return r.Repo.FindAll(ctx)
}

// Post is the resolver for the post field.
func (r *queryResolver) Post(ctx context.Context, id string) (*post.Post, error) {
	p, err := r.Repo.FindByID(ctx, id)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PostChanged is the resolver for the postChanged field.
func (r *subscriptionResolver) PostChanged(ctx context.Context) (<-chan *model.PostEvent, error) {
	if r.Events == nil {
		return nil, errors.New("subscriptions are not available")
	}

	batches, unsubscribe := r.Events.Subscribe()
	out := make(chan *model.PostEvent, 1)

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-batches:
				if !ok {
					return
				}
				for _, ev := range batch {
					select {
					case out <- model.NewPostEvent(ev):
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	r.logger().Debug("subscription started", "subscribers", r.Events.Subscribers())
	return out, nil
}

// Mutation returns MutationResolver implementation.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

// Query returns QueryResolver implementation.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

// Subscription returns SubscriptionResolver implementation.
func (r *Resolver) Subscription() SubscriptionResolver { return &subscriptionResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type subscriptionResolver struct{ *Resolver }
