package field

// Aggregate sums force contributions elementwise and applies transform
// as a single final linear map into the actuator's reference frame. An
// empty contribution list sums to the zero vector; the identity
// transform is a no-op.
func Aggregate(contributions []Vec3, transform Mat3) Vec3 {
	var sum Vec3
	for _, f := range contributions {
		sum = sum.Add(f)
	}
	return transform.MulVec(sum)
}
