// Package gateway defines the external collaborator interfaces the
// scheduler drives during admission and completion. Implementations
// live in subpackages; the scheduler depends only on these interfaces.
package gateway

import "context"

// NotificationGateway posts progress conversations to a messaging
// system. ThreadRef values are opaque handles owned by the
// implementation.
type NotificationGateway interface {
	// CreateThread opens a new thread for a topic and returns its ref.
	CreateThread(ctx context.Context, topic, message string) (threadRef string, err error)

	// ReplyToThread posts a follow-up message into an existing thread.
	ReplyToThread(ctx context.Context, threadRef, message string) error
}

// RepositoryGateway manipulates the delivery repository. BranchRef and
// prRef values are opaque handles owned by the implementation.
type RepositoryGateway interface {
	// CreateBranch creates a work branch off baseBranch.
	CreateBranch(ctx context.Context, name, baseBranch string) error

	// CreatePullRequest opens a pull request from headBranch into
	// baseBranch and returns its ref.
	CreatePullRequest(ctx context.Context, title, body, headBranch, baseBranch string) (prRef string, err error)
}
