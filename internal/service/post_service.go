package service

import (
	"context"
	"slices"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	minTitleLen   = 5
	minContentLen = 5

	// DefaultPageSize matches the page size clients get when they ask for none.
	DefaultPageSize = 10
	// MaxPageSize bounds how much a single request can pull.
	MaxPageSize = 100
)

// AssetStore is the slice of the asset lifecycle the post flows need.
type AssetStore interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
	Reclaim(locator string)
	URL(locator string) string
	LocatorFromURL(url string) string
}

// EventPublisher delivers a committed feed event to connected observers.
// Implementations must treat delivery as fire-and-forget; a publish failure
// never unwinds the already-committed mutation.
type EventPublisher interface {
	PublishFeedEvent(event models.FeedEvent)
}

// PostService implements the ownership-checked mutation flows for posts.
// Every event publish happens strictly after successful persistence.
type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	assets    AssetStore
	publisher EventPublisher
}

// CreatePostInput carries a new post's fields plus the uploaded image bytes.
type CreatePostInput struct {
	UserID    uint
	Title     string
	Content   string
	ImageName string
	ImageData []byte
}

// UpdatePostInput carries replacement fields for an existing post. ImageData
// may be empty, in which case the current asset is kept.
type UpdatePostInput struct {
	UserID    uint
	PostID    uint
	Title     string
	Content   string
	ImageName string
	ImageData []byte
}

// PostPage is one page of the feed plus the total row count, fetched with a
// separate COUNT query. The two may skew slightly under concurrent writes.
type PostPage struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total_items"`
}

// NewPostService wires the mutation core to its collaborators.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	assets AssetStore,
	publisher EventPublisher,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		assets:    assets,
		publisher: publisher,
	}
}

// validatePostFields enforces the shared title/content rules. Values are
// compared after trimming so whitespace padding cannot satisfy the minimum.
func validatePostFields(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if len(title) < minTitleLen {
		return "", "", models.NewValidationError("Title must be at least 5 characters")
	}
	if len(content) < minContentLen {
		return "", "", models.NewValidationError("Content must be at least 5 characters")
	}
	return title, content, nil
}

// CreatePost validates, stores the image asset, persists the post, and then
// publishes the create event. Field validation runs before the asset is
// written so a rejected request stores nothing. The creator is always the
// authenticated caller.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.create")
	defer span.End()
	span.AddAttributes(attribute.Int("user.id", int(in.UserID)))

	title, content, err := validatePostFields(in.Title, in.Content)
	if err != nil {
		return nil, err
	}
	if len(in.ImageData) == 0 {
		return nil, models.NewMissingAssetError("An image is required")
	}

	creator, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	locator, err := s.assets.Store(ctx, in.ImageName, in.ImageData)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    title,
		Content:  content,
		ImageURL: s.assets.URL(locator),
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		// The asset was already written; reclaim it so the failed create
		// leaves no orphan behind.
		go s.assets.Reclaim(locator)
		span.SetError(err)
		return nil, err
	}

	// The commit succeeded, so the event must go out; publish from the record
	// in hand rather than gating delivery on a second read.
	post.User = *creator
	s.publish(models.FeedEvent{Action: models.FeedActionCreate, Post: post})
	return post, nil
}

// UpdatePost replaces a post's fields after an ownership check. A superseded
// image asset is reclaimed only after the new state is persisted; concurrent
// updates to the same post are last-write-wins.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "post.update")
	defer span.End()
	span.AddAttributes(attribute.Int("post.id", int(in.PostID)))

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	title, content, err := validatePostFields(in.Title, in.Content)
	if err != nil {
		return nil, err
	}

	oldLocator := s.assets.LocatorFromURL(post.ImageURL)
	newLocator := ""
	if len(in.ImageData) > 0 {
		newLocator, err = s.assets.Store(ctx, in.ImageName, in.ImageData)
		if err != nil {
			return nil, err
		}
		post.ImageURL = s.assets.URL(newLocator)
	}

	post.Title = title
	post.Content = content

	if err := s.postRepo.Update(ctx, post); err != nil {
		if newLocator != "" {
			// Persistence failed, so the replacement asset is the orphan.
			go s.assets.Reclaim(newLocator)
		}
		span.SetError(err)
		return nil, err
	}

	if newLocator != "" && oldLocator != "" && oldLocator != newLocator {
		go s.assets.Reclaim(oldLocator)
	}

	// post came preloaded with its user from the ownership read, so it is
	// complete; a re-read here would let a transient failure swallow the
	// event for an already-committed update.
	s.publish(models.FeedEvent{Action: models.FeedActionUpdate, Post: post})
	return post, nil
}

// DeletePost removes a post after an ownership check. The record goes first;
// the asset is reclaimed best-effort in the background afterwards.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	span, ctx := observability.NewSpan(ctx, "post.delete")
	defer span.End()
	span.AddAttributes(attribute.Int("post.id", int(postID)))

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	locator := s.assets.LocatorFromURL(post.ImageURL)
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	go s.assets.Reclaim(locator)

	s.publish(models.FeedEvent{Action: models.FeedActionDelete, PostID: postID})
	return nil
}

// GetPost returns a single post by ID.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListPosts returns the requested feed page, newest first, with the total
// item count. Page and pageSize are clamped, never rejected.
func (s *PostService) ListPosts(ctx context.Context, page, pageSize int) (*PostPage, error) {
	page, pageSize = clampPage(page, pageSize)

	// Only the hot first page is cached, and only for the sizes the
	// invalidation path knows about; everything else goes straight to the DB.
	if page == 1 && slices.Contains(cache.FirstPageSizes, pageSize) {
		var cached PostPage
		err := cache.Aside(ctx, cache.PostsPageKey(page, pageSize), &cached, cache.PostsPageTTL, func() error {
			fresh, err := s.fetchPage(ctx, page, pageSize)
			if err != nil {
				return err
			}
			cached = *fresh
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}

	return s.fetchPage(ctx, page, pageSize)
}

func (s *PostService) fetchPage(ctx context.Context, page, pageSize int) (*PostPage, error) {
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return &PostPage{Posts: posts, Total: total}, nil
}

// GetUserPosts returns one page of the given user's posts plus their total.
func (s *PostService) GetUserPosts(ctx context.Context, userID uint, page, pageSize int) (*PostPage, error) {
	page, pageSize = clampPage(page, pageSize)

	total, err := s.postRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetByUserID(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return &PostPage{Posts: posts, Total: total}, nil
}

// clampPage normalizes out-of-range pagination values instead of erroring.
func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func (s *PostService) publish(event models.FeedEvent) {
	if s.publisher != nil {
		s.publisher.PublishFeedEvent(event)
	}
}
