package catalog

import "context"

// sampleProducts is a small starter catalog so a fresh install has
// something to search against.
var sampleProducts = []Product{
	{
		ID:          "p-001",
		Title:       "Áo khoác nam dáng dài",
		Slug:        "ao-khoac-nam-dang-dai",
		Description: "Áo khoác gió nam chống nước, phong cách thể thao",
		Price:       549000,
		Color:       "đen",
		Image:       "/images/ao-khoac-nam-dang-dai.jpg",
		Rating:      4.6,
		ReviewCount: 128,
		Quantity:    42,
		Brand:       "Routine",
		Category:    "Áo khoác",
	},
	{
		ID:          "p-002",
		Title:       "Áo sơ mi nữ linen trắng",
		Slug:        "ao-so-mi-nu-linen-trang",
		Description: "Sơ mi linen thoáng mát, phù hợp công sở",
		Price:       329000,
		Color:       "trắng",
		Image:       "/images/ao-so-mi-nu-linen.jpg",
		Rating:      4.8,
		ReviewCount: 214,
		Quantity:    67,
		Brand:       "Canifa",
		Category:    "Áo sơ mi",
	},
	{
		ID:          "p-003",
		Title:       "Quần jean nam slim fit",
		Slug:        "quan-jean-nam-slim-fit",
		Description: "Quần jean co giãn, màu xanh đậm",
		Price:       459000,
		Color:       "xanh",
		Image:       "/images/quan-jean-nam-slim.jpg",
		Rating:      4.4,
		ReviewCount: 86,
		Quantity:    15,
		Brand:       "Routine",
		Category:    "Quần jean",
	},
	{
		ID:          "p-004",
		Title:       "Váy len nữ cổ lọ",
		Slug:        "vay-len-nu-co-lo",
		Description: "Váy len dệt kim giữ ấm mùa đông, kiểu dáng thanh lịch",
		Price:       389000,
		Color:       "be",
		Image:       "/images/vay-len-nu-co-lo.jpg",
		Rating:      4.7,
		ReviewCount: 54,
		Quantity:    23,
		Brand:       "Canifa",
		Category:    "Váy",
	},
}

// Seed inserts the starter catalog if the products table is empty.
func (s *SQLiteStore) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, p := range sampleProducts {
		if err := s.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
