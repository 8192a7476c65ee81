package services

import "errors"

var (
	// ErrNotFound 目标实体不存在（详情查询、撤票、改评论）
	ErrNotFound = errors.New("not found")
	// ErrAlreadyVoted 同一用户对同一 idea 的重复投票，由唯一索引拦下
	ErrAlreadyVoted = errors.New("already voted")
	// ErrForbidden 只有作者本人可以修改自己的内容
	ErrForbidden = errors.New("forbidden")
)
