package mysql

import (
	"Community_Graph/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	DB *gorm.DB
}

func (r *CommentRepository) Create(c *model.PostComment) error {
	return r.DB.Create(c).Error
}

func (r *CommentRepository) FindByID(id uint64) (*model.PostComment, error) {
	var c model.PostComment
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *CommentRepository) FindForUpdate(id uint64) (*model.PostComment, error) {
	var c model.PostComment
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

// ListByPost 帖子下的评论，软删除的评论保留以维持楼层结构
func (r *CommentRepository) ListByPost(postID uint64) ([]model.PostComment, error) {
	var list []model.PostComment
	err := r.DB.Where("post_id = ?", postID).Order("id ASC").Find(&list).Error
	return list, err
}

// SoftDelete 标记删除并替换内容，计数保持不变
func (r *CommentRepository) SoftDelete(id uint64, placeholder string) error {
	return r.DB.Model(&model.PostComment{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "content": placeholder, "image": ""}).Error
}

func (r *CommentRepository) CountReplies(commentID uint64) (int64, error) {
	var n int64
	err := r.DB.Model(&model.PostReply{}).Where("comment_id = ?", commentID).Count(&n).Error
	return n, err
}

func (r *CommentRepository) CreateReply(reply *model.PostReply) error {
	return r.DB.Create(reply).Error
}

func (r *CommentRepository) FindReply(id uint64) (*model.PostReply, error) {
	var reply model.PostReply
	err := r.DB.Where("id = ? AND is_active = ?", id, true).First(&reply).Error
	return &reply, err
}

func (r *CommentRepository) FindReplyForUpdate(id uint64) (*model.PostReply, error) {
	var reply model.PostReply
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_active = ?", id, true).First(&reply).Error
	return &reply, err
}

func (r *CommentRepository) ListReplies(commentID uint64) ([]model.PostReply, error) {
	var list []model.PostReply
	err := r.DB.Where("comment_id = ? AND is_active = ?", commentID, true).Order("id ASC").Find(&list).Error
	return list, err
}
