// Package pagination 实现统一的 offset 分页窗口计算。
package pagination

// Normalize 纠正非法入参；边界校验在 handler 层完成，这里只做兜底
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// Offset skip = (page-1) * limit
func Offset(page, limit int) int {
	page, limit = Normalize(page, limit)
	return (page - 1) * limit
}

// HasNext total > page*limit 时还有下一页；相等时没有
func HasNext(total int64, page, limit int) bool {
	page, limit = Normalize(page, limit)
	return total > int64(page)*int64(limit)
}

// ReplyOffset 回复分页在普通窗口前额外跳过 preview 条内联预览
func ReplyOffset(page, limit, preview int) int {
	if preview < 0 {
		preview = 0
	}
	return preview + Offset(page, limit)
}

// ReplyHasNext 对应 ReplyOffset 的下一页判定
func ReplyHasNext(total int64, page, limit, preview int) bool {
	if preview < 0 {
		preview = 0
	}
	page, limit = Normalize(page, limit)
	return total > int64(preview)+int64(page)*int64(limit)
}
