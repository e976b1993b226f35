package publisher

import "context"

type Visibility struct {
	AllowComment bool
	AllowDuet    bool
	AllowStitch  bool
	Public       bool
}

// DefaultVisibility is applied to every upload; it is not negotiated per conversation.
var DefaultVisibility = Visibility{
	AllowComment: true,
	AllowDuet:    false,
	AllowStitch:  false,
	Public:       true,
}

type PublishInput struct {
	AccountName  string
	FilePath     string
	Caption      string
	DelaySeconds int64
	Visibility   Visibility
}

type Publisher interface {
	Login(ctx context.Context, accountName string) error
	Publish(ctx context.Context, input PublishInput) error
}
