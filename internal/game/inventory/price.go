package inventory

// FinalPrice applies a bartering discount of bartering percent to base.
//
// Postcondition: Returns max(1, floor(base * (100 - bartering) / 100)).
func FinalPrice(base, bartering int) int {
	num := base * (100 - bartering)
	price := num / 100
	if num%100 != 0 && num < 0 {
		price--
	}
	if price < 1 {
		return 1
	}
	return price
}
