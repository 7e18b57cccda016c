// Package policy decides whether an actor may perform an action. Every
// function here is pure; callers own the consequences of a refusal.
package policy

import "yatube/internal/model"

// Actor is the identity behind a request. The zero value is anonymous.
type Actor struct {
	ID       uint64
	Username string
}

var Anonymous = Actor{}

func (a Actor) IsAuthenticated() bool {
	return a.ID != 0
}

func CanCreatePost(actor Actor) bool {
	return actor.IsAuthenticated()
}

// CanEditPost is true only for the post's author.
func CanEditPost(actor Actor, post *model.Post) bool {
	return actor.IsAuthenticated() && post != nil && actor.ID == post.AuthorID
}

func CanComment(actor Actor) bool {
	return actor.IsAuthenticated()
}

// CanFollow forbids anonymous actors and self-follows.
func CanFollow(actor Actor, authorID uint64) bool {
	return actor.IsAuthenticated() && actor.ID != authorID
}
