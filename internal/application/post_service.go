package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/postboard/internal/domain/entity"
	repo "github.com/oksasatya/postboard/internal/domain/repository"
	"github.com/oksasatya/postboard/internal/observability"
	"github.com/oksasatya/postboard/pkg/apperror"
	"github.com/oksasatya/postboard/pkg/helpers"
	"github.com/oksasatya/postboard/pkg/mailer"
	tpl "github.com/oksasatya/postboard/pkg/mailer/templates"
)

const defaultSaveAttempts = 3

var (
	errPostNotFound    = apperror.NotFound("post not found")
	errCommentNotFound = apperror.NotFound("comment does not exist")
	errUserNotFound    = apperror.NotFound("user not found")
)

// PostService owns every mutation of posts, comments and likes.
type PostService struct {
	Posts     repo.PostRepository
	Users     repo.UserRepository
	Publisher JobPublisher
	Logger    *logrus.Logger
	AppName   string

	// MaxAttempts bounds the read-modify-save loop on version conflicts.
	MaxAttempts int

	newID func() string
	now   func() time.Time
}

func NewPostService(posts repo.PostRepository, users repo.UserRepository, pub JobPublisher, logger *logrus.Logger, maxAttempts int) *PostService {
	if maxAttempts <= 0 {
		maxAttempts = defaultSaveAttempts
	}
	return &PostService{
		Posts:       posts,
		Users:       users,
		Publisher:   pub,
		Logger:      logger,
		MaxAttempts: maxAttempts,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, callerID, text string) (p *entity.Post, err error) {
	defer track("create", &err)

	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation("text is required", map[string]string{"text": "is required"})
	}
	u, err := s.loadUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	p = entity.NewPost(u, text)
	if err := s.Posts.Insert(ctx, p); err != nil {
		return nil, s.internal(err, "insert post failed", logrus.Fields{"user_id": callerID})
	}
	return p, nil
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) (posts []*entity.Post, err error) {
	defer track("list", &err)

	posts, err = s.Posts.ListAll(ctx)
	if err != nil {
		return nil, s.internal(err, "list posts failed", nil)
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (p *entity.Post, err error) {
	defer track("get", &err)
	return s.loadPost(ctx, postID)
}

// DeletePost removes a post with its comments and likes. Only the author may.
func (s *PostService) DeletePost(ctx context.Context, callerID, postID string) (err error) {
	defer track("delete", &err)

	p, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != callerID {
		return apperror.Forbidden("user not authorized")
	}
	if err := s.Posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errPostNotFound
		}
		return s.internal(err, "delete post failed", logrus.Fields{"post_id": postID})
	}
	return nil
}

// AddComment prepends a comment by callerID and notifies the post author.
func (s *PostService) AddComment(ctx context.Context, callerID, postID, text string) (p *entity.Post, err error) {
	defer track("add_comment", &err)

	if strings.TrimSpace(text) == "" {
		return nil, apperror.Validation("text is required", map[string]string{"text": "is required"})
	}
	u, err := s.loadUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	c := entity.Comment{
		ID:        s.newID(),
		UserID:    u.ID,
		Text:      text,
		Name:      u.Name,
		Avatar:    u.AvatarURL,
		CreatedAt: s.now().UTC(),
	}
	p, err = s.mutate(ctx, postID, func(p *entity.Post) error {
		p.Comments.Prepend(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyComment(ctx, p, u, c)
	return p, nil
}

// RemoveComment deletes the comment with commentID. Only its author may,
// the post author included.
func (s *PostService) RemoveComment(ctx context.Context, callerID, postID, commentID string) (p *entity.Post, err error) {
	defer track("remove_comment", &err)

	return s.mutate(ctx, postID, func(p *entity.Post) error {
		c, ok := p.Comments.Find(commentID)
		if !ok {
			return errCommentNotFound
		}
		if c.UserID != callerID {
			return apperror.Forbidden("user not authorized")
		}
		p.Comments.Remove(commentID)
		return nil
	})
}

func (s *PostService) LikePost(ctx context.Context, callerID, postID string) (p *entity.Post, err error) {
	defer track("like", &err)

	likeID := s.newID()
	return s.mutate(ctx, postID, func(p *entity.Post) error {
		if !p.Likes.Add(entity.Like{ID: likeID, UserID: callerID}) {
			return apperror.New(apperror.KindAlreadyLiked, "post already liked")
		}
		return nil
	})
}

// UnlikePost removes the caller's own like.
func (s *PostService) UnlikePost(ctx context.Context, callerID, postID string) (p *entity.Post, err error) {
	defer track("unlike", &err)

	return s.mutate(ctx, postID, func(p *entity.Post) error {
		if !p.Likes.Remove(callerID) {
			return apperror.New(apperror.KindNotLiked, "post has not yet been liked")
		}
		return nil
	})
}

// mutate loads the post, applies fn and saves it conditionally on the loaded
// version. A version conflict reloads and reapplies fn, so fn sees fresh
// state on every attempt and its checks are evaluated against it.
func (s *PostService) mutate(ctx context.Context, postID string, fn func(*entity.Post) error) (*entity.Post, error) {
	for attempt := 1; attempt <= s.MaxAttempts; attempt++ {
		p, err := s.loadPost(ctx, postID)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			return nil, err
		}
		err = s.Posts.Save(ctx, p)
		switch {
		case err == nil:
			return p, nil
		case errors.Is(err, repo.ErrConflict):
			observability.PostSaveConflicts.Inc()
			if s.Logger != nil {
				s.Logger.WithFields(logrus.Fields{"post_id": postID, "attempt": attempt}).Debug("post save conflict, retrying")
			}
			if err := ctx.Err(); err != nil {
				return nil, s.internal(err, "post save aborted", logrus.Fields{"post_id": postID})
			}
		case errors.Is(err, repo.ErrNotFound):
			return nil, errPostNotFound
		default:
			return nil, s.internal(err, "save post failed", logrus.Fields{"post_id": postID})
		}
	}
	return nil, apperror.New(apperror.KindConflict, "post was modified concurrently, please retry")
}

func (s *PostService) loadPost(ctx context.Context, postID string) (*entity.Post, error) {
	p, err := s.Posts.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errPostNotFound
		}
		return nil, s.internal(err, "load post failed", logrus.Fields{"post_id": postID})
	}
	return p, nil
}

func (s *PostService) loadUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, s.internal(err, "load user failed", logrus.Fields{"user_id": userID})
	}
	return u, nil
}

func (s *PostService) notifyComment(ctx context.Context, p *entity.Post, commenter *entity.User, c entity.Comment) {
	if s.Publisher == nil || p.UserID == commenter.ID {
		return
	}
	author, err := s.Users.GetByID(ctx, p.UserID)
	if err != nil {
		helpers.LogError(s.Logger, "comment notification: load author failed", err, logrus.Fields{"post_id": p.ID})
		return
	}
	job := mailer.EmailJob{
		To:       author.Email,
		Template: tpl.CommentNotification,
		Data: tpl.ToMap(tpl.EmailData{
			AppName:       s.AppName,
			Name:          author.Name,
			Email:         author.Email,
			CommenterName: commenter.Name,
			PostID:        p.ID,
			PostExcerpt:   tpl.Excerpt(p.Text, 80),
			CommentText:   c.Text,
			TimeAt:        c.CreatedAt,
		}),
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil {
		helpers.LogError(s.Logger, "comment notification: publish failed", err, logrus.Fields{"post_id": p.ID})
	}
}

func (s *PostService) internal(err error, msg string, fields logrus.Fields) error {
	helpers.LogError(s.Logger, msg, err, fields)
	return apperror.Internal(fmt.Errorf("%s: %w", msg, err))
}

// track records the outcome of a post operation.
func track(op string, err *error) {
	outcome := "ok"
	if *err != nil {
		outcome = strings.ToLower(string(apperror.KindOf(*err)))
	}
	observability.PostOperations.WithLabelValues(op, outcome).Inc()
}
