package cip

import "context"

// CommentsService works with user comments (annotations) on records.
type CommentsService struct {
	c *Client
}

func (s *CommentsService) call(ctx context.Context, operation, catalog string, id int64, params []Param) (Response, error) {
	return s.c.invoke(ctx, Request{
		Service:     ServiceComments,
		Operation:   operation,
		Path:        []string{catalog, formatID(id)},
		Params:      values(nil, params),
		Credentials: true,
	})
}

// Get returns the comments of record id.
func (s *CommentsService) Get(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "get", catalog, id, params)
}

// GetThread returns the comment thread id.
func (s *CommentsService) GetThread(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "getthread", catalog, id, params)
}

// Add starts a comment thread on record id.
func (s *CommentsService) Add(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "add", catalog, id, params)
}

// AddComment adds a comment to thread id.
func (s *CommentsService) AddComment(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "addcomment", catalog, id, params)
}

// AddDiscussion adds a discussion entry to comment id.
func (s *CommentsService) AddDiscussion(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "adddiscussion", catalog, id, params)
}

// UpdateCoordinates moves the annotation of thread id.
func (s *CommentsService) UpdateCoordinates(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "updatecoordinates", catalog, id, params)
}

// UpdateComment edits comment id.
func (s *CommentsService) UpdateComment(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "updatecomment", catalog, id, params)
}

// UpdateDiscussion edits discussion entry id.
func (s *CommentsService) UpdateDiscussion(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "updatediscussion", catalog, id, params)
}

// DeleteThread deletes thread id with its comments.
func (s *CommentsService) DeleteThread(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "deletethread", catalog, id, params)
}

// DeleteComment deletes comment id.
func (s *CommentsService) DeleteComment(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "deletecomment", catalog, id, params)
}

// DeleteDiscussion deletes discussion entry id.
func (s *CommentsService) DeleteDiscussion(ctx context.Context, catalog string, id int64, params ...Param) (Response, error) {
	return s.call(ctx, "deletediscussion", catalog, id, params)
}
