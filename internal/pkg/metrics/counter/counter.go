package counter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const variantViewsKey = "variant:counters:views"

// Counter buffers product page views in a Redis hash and periodically adds
// them to product_variants.view_count in one statement.
type Counter struct {
	rdb *redis.Client
	db  *gorm.DB
}

func New(rdb *redis.Client, db *gorm.DB) *Counter {
	return &Counter{rdb: rdb, db: db}
}

// AddVariantView increments the pending view counter of a variant
func (c *Counter) AddVariantView(ctx context.Context, variantID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.HIncrBy(ctx, variantViewsKey, variantID, 1).Err()
}

// Flush drains the pending counters into the database.
func (c *Counter) Flush(ctx context.Context) error {
	return c.flushHashToTable(ctx, variantViewsKey, "product_variants", "view_count")
}

// flushHashToTable drains a Redis hash atomically and applies batched increments.
// RENAME to a temporary key keeps increments that arrive during the flush.
func (c *Counter) flushHashToTable(ctx context.Context, redisKey, table, column string) error {
	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := c.rdb.Rename(ctx, redisKey, tmpKey).Err(); err != nil {
		if errors.Is(err, redis.Nil) || strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		return err
	}
	defer c.rdb.Del(ctx, tmpKey)

	data, err := c.rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}

	sql, args := buildIncrementSQL(table, column, data)
	if sql == "" {
		return nil
	}
	return c.db.WithContext(ctx).Exec(sql, args...).Error
}

// buildIncrementSQL composes
// UPDATE <table> SET <column> = <column> + CASE id WHEN ? THEN ? ... END WHERE id IN (...)
// Ids are sorted so the statement is stable. Zero or invalid increments are dropped.
func buildIncrementSQL(table, column string, data map[string]string) (string, []interface{}) {
	type pair struct {
		id  string
		inc int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		inc, err := strconv.ParseInt(v, 10, 64)
		if err != nil || inc == 0 || k == "" {
			continue
		}
		pairs = append(pairs, pair{id: k, inc: inc})
	}
	if len(pairs) == 0 {
		return "", nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	builder.WriteString("UPDATE ")
	builder.WriteString(table)
	builder.WriteString(" SET ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + CASE id")
	for _, p := range pairs {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, p.id, p.inc)
	}
	builder.WriteString(" END WHERE id IN (")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, p.id)
	}
	builder.WriteString(")")

	return builder.String(), args
}
