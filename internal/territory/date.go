// 包 territory：领土记录的数据模型、日历日期与错误类型；不依赖任何输出表示
package territory

import (
	"fmt"
	"time"
)

// Date：公历日历日期（无时区）
// 背景：有效期边界按“天”比较，时区与时刻均无意义；用整数三元组避免 time.Time 的时区歧义。
// 约束：零值表示“缺失”，合法日期只能通过 NewDate 或已校验的来源构造。
type Date struct {
	Year  int
	Month int
	Day   int
}

// DaysIn：返回指定年份某月的实际天数，闰年按所查询年份计算
func DaysIn(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeap(year) {
			return 29
		}
		return 28
	}
	return 0
}

// IsLeap：格里高利历闰年规则
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// MinYear / MaxYear：可表示的年份范围，保证 Ordinal 在 int64 内不溢出
const (
	MinYear = -1_000_000_000
	MaxYear = 1_000_000_000
)

// NewDate：校验并构造日期
// 约束：年份超出 MinYear–MaxYear、月份超出 1–12 或日超出当月实际天数时返回 InvalidDateError，不做就近修正。
func NewDate(year, month, day int) (Date, error) {
	if year < MinYear || year > MaxYear || month < 1 || month > 12 || day < 1 || day > DaysIn(year, month) {
		return Date{}, &InvalidDateError{Year: year, Month: month, Day: day}
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// MustDate：测试与常量场景使用，非法日期直接 panic
func MustDate(year, month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime 取 t 所在时区的日历日期
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

func (d Date) IsZero() bool { return d == Date{} }

// Valid：是否为真实存在的日历日期
func (d Date) Valid() bool {
	_, err := NewDate(d.Year, d.Month, d.Day)
	return err == nil
}

// Ordinal：连续的天序号（proleptic Gregorian，0 对应 0000-03-01），用于区间树的整数键
// 约束：仅对合法日期有意义；相邻日期序号相差 1，年份可为 0 或负数。
func (d Date) Ordinal() int64 {
	y := int64(d.Year)
	m := int64(d.Month)
	// 以 3 月为年初，闰日落在年末，便于统一计算
	if m <= 2 {
		y--
		m += 12
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	doy := (153*(m-3)+2)/5 + int64(d.Day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Compare：返回 -1/0/1
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(d.Month, o.Month)
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// Within：闭区间判定，首尾两日均视为有效
func (d Date) Within(from, to Date) bool {
	return d.Compare(from) >= 0 && d.Compare(to) <= 0
}

func (d Date) String() string {
	if d.Year >= 0 && d.Year <= 9999 {
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return fmt.Sprintf("%+05d-%02d-%02d", d.Year, d.Month, d.Day)
}
