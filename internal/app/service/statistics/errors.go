package statistics

import "errors"

var ErrInvalidDataItem = errors.New("invalid data item id")
