package courts

import "strings"

const (
	DefaultTarget            = "제한없음"
	DefaultReservationMethod = "온라인"
	DefaultFeeInfo           = "유료"
	DefaultPhone             = "02-120"

	// rows shorter than this are skipped when reading the sheet
	minRowCells = 6
)

// Header is the first row of the court sheet, in column order A..J.
var Header = []string{"시설명", "지역", "주소", "전화번호", "코트번호", "시간대", "이용대상", "예약방법", "요금정보", "설명"}

type TennisCourt struct {
	FacilityName      string `json:"facility_name"`
	Region            string `json:"region"`
	CourtNumber       string `json:"court_number"`
	TimePeriod        string `json:"time_period"`
	Target            string `json:"target"`
	ReservationMethod string `json:"reservation_method"`
	FeeInfo           string `json:"fee_info"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	Description       string `json:"description"`
}

// TennisFacility groups courts sharing a facility name.
type TennisFacility struct {
	FacilityName string        `json:"facility_name"`
	Region       string        `json:"region"`
	Address      string        `json:"address"`
	Phone        string        `json:"phone"`
	Courts       []TennisCourt `json:"courts"`
}

func (c *TennisCourt) Trim() {
	for _, s := range []*string{
		&c.FacilityName, &c.Region, &c.CourtNumber, &c.TimePeriod, &c.Target,
		&c.ReservationMethod, &c.FeeInfo, &c.Address, &c.Phone, &c.Description,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// toRow lays a court out in sheet column order.
func (c TennisCourt) toRow() []interface{} {
	return []interface{}{
		c.FacilityName,
		c.Region,
		c.Address,
		c.Phone,
		c.CourtNumber,
		c.TimePeriod,
		c.Target,
		c.ReservationMethod,
		c.FeeInfo,
		c.Description,
	}
}

func cell(row []interface{}, i int, def string) string {
	if i >= len(row) || row[i] == nil {
		return def
	}
	s, ok := row[i].(string)
	if !ok || s == "" {
		return def
	}
	return s
}

// courtFromRow parses one data row. ok is false for rows that are too short.
func courtFromRow(row []interface{}) (TennisCourt, bool) {
	if len(row) < minRowCells {
		return TennisCourt{}, false
	}
	return TennisCourt{
		FacilityName:      cell(row, 0, ""),
		Region:            cell(row, 1, ""),
		Address:           cell(row, 2, ""),
		Phone:             cell(row, 3, DefaultPhone),
		CourtNumber:       cell(row, 4, ""),
		TimePeriod:        cell(row, 5, ""),
		Target:            cell(row, 6, DefaultTarget),
		ReservationMethod: cell(row, 7, DefaultReservationMethod),
		FeeInfo:           cell(row, 8, DefaultFeeInfo),
		Description:       cell(row, 9, ""),
	}, true
}

// groupFacilities keeps facilities in first-seen order.
func groupFacilities(courts []TennisCourt) []TennisFacility {
	index := map[string]int{}
	var out []TennisFacility
	for _, c := range courts {
		i, ok := index[c.FacilityName]
		if !ok {
			i = len(out)
			index[c.FacilityName] = i
			out = append(out, TennisFacility{
				FacilityName: c.FacilityName,
				Region:       c.Region,
				Address:      c.Address,
				Phone:        c.Phone,
			})
		}
		out[i].Courts = append(out[i].Courts, c)
	}
	return out
}

// SheetInfo describes the spreadsheet backing the catalog.
type SheetInfo struct {
	Title  string       `json:"title"`
	URL    string       `json:"url"`
	Sheets []SheetStats `json:"sheets"`
}

type SheetStats struct {
	Title       string `json:"title"`
	RowCount    int64  `json:"rowCount"`
	ColumnCount int64  `json:"columnCount"`
}

// Filter narrows a catalog listing; empty fields match everything.
type Filter struct {
	Region     string
	Facility   string
	TimePeriod string
	Query      string
}
