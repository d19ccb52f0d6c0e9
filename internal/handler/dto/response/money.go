package response

import (
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

// moneyOption renders decimal amounts with two fractional digits.
var moneyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: decimal.Decimal{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(decimal.Decimal).StringFixed(2), nil
			},
		},
		{
			SrcType: (*decimal.Decimal)(nil),
			DstType: (*string)(nil),
			Fn: func(src any) (any, error) {
				d := src.(*decimal.Decimal)
				if d == nil {
					return nil, nil
				}
				s := d.StringFixed(2)
				return &s, nil
			},
		},
	},
}
