package loaders

import (
	"context"
	"fmt"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/skillswap/backend/internal/domain/entities"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Source is the read model the loaders batch against
type Source interface {
	UsersByIDs(ids []string) []*entities.User
	FeedbackForSwap(swapID string) []*entities.Feedback
}

// Loaders holds the per-request batching loaders
type Loaders struct {
	UserLoader     *dataloader.Loader[string, *entities.User]
	FeedbackLoader *dataloader.Loader[string, []*entities.Feedback]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(source Source) *Loaders {
	return &Loaders{
		UserLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.User] {
			byID := make(map[string]*entities.User, len(keys))
			for _, u := range source.UsersByIDs(keys) {
				byID[u.ID] = u
			}

			results := make([]*dataloader.Result[*entities.User], len(keys))
			for i, key := range keys {
				if u, ok := byID[key]; ok {
					results[i] = &dataloader.Result[*entities.User]{Data: u}
				} else {
					results[i] = &dataloader.Result[*entities.User]{Error: fmt.Errorf("user %s not found", key)}
				}
			}
			return results
		}),
		FeedbackLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[[]*entities.Feedback] {
			results := make([]*dataloader.Result[[]*entities.Feedback], len(keys))
			for i, key := range keys {
				results[i] = &dataloader.Result[[]*entities.Feedback]{Data: source.FeedbackForSwap(key)}
			}
			return results
		}),
	}
}

// For returns the loaders attached to ctx, or fresh ones over source
func For(ctx context.Context, source Source) *Loaders {
	if l, ok := ctx.Value(loadersKey).(*Loaders); ok {
		return l
	}
	return NewLoaders(source)
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// SwapViews hydrates swaps with participant summaries and, when withFeedback
// is set, their feedback. All lookups of one call are batched.
func (l *Loaders) SwapViews(ctx context.Context, swaps []*entities.SwapRequest, withFeedback bool) []*entities.SwapView {
	type pending struct {
		from     dataloader.Thunk[*entities.User]
		to       dataloader.Thunk[*entities.User]
		feedback dataloader.Thunk[[]*entities.Feedback]
	}

	thunks := make([]pending, len(swaps))
	for i, sw := range swaps {
		thunks[i].from = l.UserLoader.Load(ctx, sw.FromUserID)
		thunks[i].to = l.UserLoader.Load(ctx, sw.ToUserID)
		if withFeedback {
			thunks[i].feedback = l.FeedbackLoader.Load(ctx, sw.ID)
		}
	}

	views := make([]*entities.SwapView, 0, len(swaps))
	for i, sw := range swaps {
		view := &entities.SwapView{SwapRequest: sw}
		if u, err := thunks[i].from(); err == nil {
			summary := u.Summary()
			view.FromUser = &summary
		}
		if u, err := thunks[i].to(); err == nil {
			summary := u.Summary()
			view.ToUser = &summary
		}
		if thunks[i].feedback != nil {
			if fb, err := thunks[i].feedback(); err == nil {
				view.Feedback = fb
			}
		}
		views = append(views, view)
	}
	return views
}
