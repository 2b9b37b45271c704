package model

// Counted 计数账本可以处理的事件类型。
// 集合是封闭的：只有本包内的类型实现了 counted()。
type Counted interface {
	counted()
}

func (*Member) counted()               {}
func (*CommunityFavorite) counted()    {}
func (*PostCategoryFavorite) counted() {}
func (*Post) counted()                 {}
func (*PostLike) counted()             {}
func (*PostScrap) counted()            {}
func (*PostComment) counted()          {}
func (*PostCommentLike) counted()      {}
func (*PostReply) counted()            {}
func (*PostReplyLike) counted()        {}
