package territory

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord 匹配所有 *MalformedRecordError
	ErrMalformedRecord = errors.New("malformed territorial record")
	// ErrInvalidDate 匹配所有 *InvalidDateError
	ErrInvalidDate = errors.New("invalid calendar date")
)

// InvalidDateError：查询日期不是真实存在的日历日期
type InvalidDateError struct {
	Year  int
	Month int
	Day   int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid calendar date: year=%d month=%d day=%d", e.Year, e.Month, e.Day)
}

func (e *InvalidDateError) Is(target error) bool { return target == ErrInvalidDate }

// MalformedRecordError：入库时发现的数据质量问题
// 背景：携带标识、位置与原始区间取值，便于定位源数据；From/To 保留原始文本，缺失字段显示为 "?"。
type MalformedRecordError struct {
	ID     string
	Index  int
	From   string
	To     string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unnamed>"
	}
	return fmt.Sprintf("malformed record %q at #%d [%s .. %s]: %s", id, e.Index, e.From, e.To, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }
