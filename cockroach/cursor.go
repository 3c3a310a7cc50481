package cockroach

import (
	"fmt"
	"slices"

	"github.com/btcsuite/btcutil/base58"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/ptr"
	"github.com/nakamauwu/backchannel/types"
	"github.com/vmihailenco/msgpack/v5"
)

const defaultPageSize = 20

type Cursor[T any] struct {
	ID string `msgpack:"i"`
	// Value is most of the time a CreatedAt time.Time field.
	Value T `msgpack:"v,omitempty"`
}

func EncodeCursor[T any](cursor Cursor[T]) (string, error) {
	b, err := msgpack.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("msgpack marshal cursor: %w", err)
	}

	return base58.Encode(b), nil
}

func DecodeCursor[T any](s string) (Cursor[T], error) {
	var c Cursor[T]

	b := base58.Decode(s)
	if len(b) == 0 {
		return c, errs.NewInvalidArgumentError("Cursor", "invalid cursor")
	}

	if err := msgpack.Unmarshal(b, &c); err != nil {
		return c, errs.NewInvalidArgumentError("Cursor", "invalid cursor")
	}

	return c, nil
}

type PageArgs[T any] struct {
	First  *uint
	After  *Cursor[T]
	Last   *uint
	Before *Cursor[T]
}

func (args PageArgs[T]) IsBackwards() bool {
	return args.Last != nil || args.Before != nil
}

func ParsePageArgs[T any](in types.PageArgs) (PageArgs[T], error) {
	var out PageArgs[T]

	if in.After != nil {
		after, err := DecodeCursor[T](*in.After)
		if err != nil {
			return out, fmt.Errorf("decode after cursor: %w", err)
		}

		out.After = &after
	}

	if in.Before != nil {
		before, err := DecodeCursor[T](*in.Before)
		if err != nil {
			return out, fmt.Errorf("decode before cursor: %w", err)
		}

		out.Before = &before
	}

	out.First = in.First
	out.Last = in.Last

	return out, nil
}

// addPageFilter appends the keyset condition for the cursor, if any,
// comparing against the (col, idCol) tuple.
// Forward pages walk towards older rows.
func addPageFilter[T any](filters []string, args map[string]any, pageArgs PageArgs[T], col, idCol string) []string {
	if pageArgs.After != nil {
		args["after_value"] = pageArgs.After.Value
		args["after_id"] = pageArgs.After.ID
		return append(filters, fmt.Sprintf("(%s, %s) < (@after_value, @after_id)", col, idCol))
	}

	if pageArgs.Before != nil {
		args["before_value"] = pageArgs.Before.Value
		args["before_id"] = pageArgs.Before.ID
		return append(filters, fmt.Sprintf("(%s, %s) > (@before_value, @before_id)", col, idCol))
	}

	return filters
}

func pageOrder[T any](pageArgs PageArgs[T], col, idCol string) string {
	if pageArgs.IsBackwards() {
		return fmt.Sprintf("ORDER BY %s ASC, %s ASC", col, idCol)
	}

	return fmt.Sprintf("ORDER BY %s DESC, %s DESC", col, idCol)
}

// pageLimit fetches one extra row to know if there is another page.
func pageLimit[T any](pageArgs PageArgs[T]) string {
	if pageArgs.IsBackwards() {
		return fmt.Sprintf("LIMIT %d", or(pageArgs.Last, defaultPageSize)+1)
	}

	return fmt.Sprintf("LIMIT %d", or(pageArgs.First, defaultPageSize)+1)
}

// applyPageInfo modifies the given page in-place.
// This is due to it needs to cut the items slice back by one
// and also reverse it in case of backwards pagination.
func applyPageInfo[I, C any](page *types.Page[I], pageArgs PageArgs[C], cursorFunc func(item I) Cursor[C]) error {
	l := uint(len(page.Items))
	if l == 0 {
		return nil
	}

	backwards := pageArgs.IsBackwards()
	if backwards {
		last := or(pageArgs.Last, defaultPageSize)
		page.PageInfo.HasPreviousPage = l > last
		if page.PageInfo.HasPreviousPage {
			page.Items = page.Items[:last]
		}
		page.PageInfo.HasNextPage = pageArgs.Before != nil
	} else {
		first := or(pageArgs.First, defaultPageSize)
		page.PageInfo.HasNextPage = l > first
		if page.PageInfo.HasNextPage {
			page.Items = page.Items[:first]
		}
		page.PageInfo.HasPreviousPage = pageArgs.After != nil
	}

	if backwards {
		slices.Reverse(page.Items)
	}

	l = uint(len(page.Items))

	startCursor := cursorFunc(page.Items[0])
	endCursor := cursorFunc(page.Items[l-1])

	if c, err := EncodeCursor(startCursor); err != nil {
		return fmt.Errorf("encode start cursor: %w", err)
	} else {
		page.PageInfo.StartCursor = ptr.From(c)
	}

	if c, err := EncodeCursor(endCursor); err != nil {
		return fmt.Errorf("encode end cursor: %w", err)
	} else {
		page.PageInfo.EndCursor = ptr.From(c)
	}

	return nil
}

func or[T any](a *T, b T) T {
	if a != nil {
		return *a
	}

	return b
}
