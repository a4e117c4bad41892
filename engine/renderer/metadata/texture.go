package metadata

/**
 * @brief Represents a logical texture identity. The application holds this
 * struct; the physical backing it resolves to may change between frames as
 * the backend cycles multi-buffered allocations.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID string
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of array layers. Minimum 1. */
	LayerCount uint32
	/** @brief The number of mip levels. Minimum 1. */
	MipLevels uint32
	/** @brief The pixel format of the backing. */
	Format TextureFormat
	/** @brief Usage flags the backing was allocated with. */
	Usage TextureUsage
	/** @brief Samples per texel; >1 means a multisample target. */
	SampleCount uint32
	/** @brief The texture debug Name. */
	Name string
	/** @brief A pointer to internal, render API-specific data. */
	InternalData interface{}
}

/**
 * @brief Represents a logical buffer identity, multi-buffered by the
 * backend the same way textures are.
 */
type Buffer struct {
	/** @brief The unique buffer identifier. */
	ID string
	/** @brief The total size of the buffer in bytes. */
	TotalSize uint64
	/** @brief Usage flags the backing was allocated with. */
	Usage BufferUsage
	/** @brief The buffer debug Name. */
	Name string
	/** @brief A pointer to internal, render API-specific data. */
	InternalData interface{}
}
