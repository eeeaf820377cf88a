package dedup

import "solar-catalog-api/internal/model"

// CandidateIndex narrows the pairwise scan to SKUs that could possibly be
// duplicates of a product.
type CandidateIndex interface {
	Lookup(manufacturer string, category model.Category) []*model.CanonicalSku
	Add(sku *model.CanonicalSku)
}

type bucketKey struct {
	manufacturer string
	category     model.Category
}

// BucketIndex groups SKUs by canonical manufacturer and category, keeping
// creation order inside each bucket.
type BucketIndex struct {
	buckets map[bucketKey][]*model.CanonicalSku
}

// NewBucketIndex creates an empty index.
func NewBucketIndex() *BucketIndex {
	return &BucketIndex{buckets: make(map[bucketKey][]*model.CanonicalSku)}
}

func (b *BucketIndex) Lookup(manufacturer string, category model.Category) []*model.CanonicalSku {
	return b.buckets[bucketKey{manufacturer, category}]
}

func (b *BucketIndex) Add(sku *model.CanonicalSku) {
	k := bucketKey{sku.Manufacturer, sku.Category}
	b.buckets[k] = append(b.buckets[k], sku)
}
