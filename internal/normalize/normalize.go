package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gyeh/carecost/internal/model"
)

var multiSpace = regexp.MustCompile(`\s+`)

// ToStagingFeeRow converts a Parquet-read FeeScheduleRow into a normalized
// StagingFeeRow. Rows without a usable code or without any percentile are
// rejected.
func ToStagingFeeRow(row *model.FeeScheduleRow, batchID uuid.UUID, fileID int64, rowNum int64) (*model.StagingFeeRow, error) {
	code := ProcedureCode(row.Code)
	if code == "" {
		return nil, fmt.Errorf("row %d: empty procedure code", rowNum)
	}

	s := &model.StagingFeeRow{
		LoadBatchID:     batchID,
		FileID:          fileID,
		SourceRowNumber: rowNum,
		Code:            code,
		CodeRaw:         row.Code,
		Description:     collapseSpace(row.Description),
		CodeType:        codeType(row.CodeType, code),
		SchedAP50:       DollarsToDecimal(row.SchedAP50),
		SchedAP75:       DollarsToDecimal(row.SchedAP75),
		SchedBP50:       DollarsToDecimal(row.SchedBP50),
		SchedBP75:       DollarsToDecimal(row.SchedBP75),
	}

	if s.SchedAP50 == nil && s.SchedAP75 == nil && s.SchedBP50 == nil && s.SchedBP75 == nil {
		return nil, fmt.Errorf("row %d: code %s has no percentile values", rowNum, code)
	}
	for _, v := range []*decimal.Decimal{s.SchedAP50, s.SchedAP75, s.SchedBP50, s.SchedBP75} {
		if v != nil && v.IsNegative() {
			return nil, fmt.Errorf("row %d: code %s has a negative percentile", rowNum, code)
		}
	}

	return s, nil
}

// ToStagingGeoRow converts a Parquet-read GeoFactorRow into a normalized
// StagingGeoRow. Both factors are required and must be positive.
func ToStagingGeoRow(row *model.GeoFactorRow, batchID uuid.UUID, fileID int64, rowNum int64) (*model.StagingGeoRow, error) {
	zip, ok := PostalCode(row.PostalCode)
	if !ok {
		return nil, fmt.Errorf("row %d: invalid postal code %q", rowNum, row.PostalCode)
	}
	a := Factor(row.SchedAFactor)
	b := Factor(row.SchedBFactor)
	if a == nil || b == nil || !a.IsPositive() || !b.IsPositive() {
		return nil, fmt.Errorf("row %d: postal code %s needs two positive factors", rowNum, zip)
	}

	return &model.StagingGeoRow{
		LoadBatchID:     batchID,
		FileID:          fileID,
		SourceRowNumber: rowNum,
		PostalCode:      zip,
		SchedAFactor:    *a,
		SchedBFactor:    *b,
		City:            optTrim(row.City),
		State:           optUpper(row.State),
	}, nil
}

// FactorPlaces is the precision geographic factors are kept at.
const FactorPlaces = 4

// Factor converts a nullable multiplier to a decimal rounded to FactorPlaces.
// NaN and infinities become nil.
func Factor(v *float64) *decimal.Decimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	d := decimal.NewFromFloat(*v).Round(FactorPlaces)
	return &d
}

// codeType keeps a declared code system when it is one we know and
// otherwise infers it from the normalized code.
func codeType(declared *string, code string) *string {
	if d := optUpper(declared); d != nil {
		if ct, ok := model.ProcedureCodeTypeByName(*d); ok {
			return &ct.Name
		}
	}
	if ct := model.InferCodeType(code); ct != "" {
		return &ct
	}
	return nil
}

func collapseSpace(s string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}

func optTrim(v *string) *string {
	if v == nil {
		return nil
	}
	s := collapseSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func optUpper(v *string) *string {
	s := optTrim(v)
	if s == nil {
		return nil
	}
	u := strings.ToUpper(*s)
	return &u
}
