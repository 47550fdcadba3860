package shader

// Kind selects one of the node shading programs.
type Kind int

// Program kinds.
const (
	// KindColor draws vertex colours.
	KindColor Kind = iota
	// KindTextured samples a texture.
	KindTextured
	// KindTexturedLit samples a texture and applies a directional light.
	KindTexturedLit
)

func (k Kind) String() string {
	switch k {
	case KindColor:
		return "color"
	case KindTextured:
		return "textured"
	case KindTexturedLit:
		return "textured-lit"
	default:
		return "unknown"
	}
}

// Sources returns the vertex and fragment shader sources of k.
func (k Kind) Sources() (vertex, fragment string) {
	switch k {
	case KindTextured:
		return texturedVertex, texturedFragment
	case KindTexturedLit:
		return litVertex, litFragment
	default:
		return colorVertex, colorFragment
	}
}

// The Uniforms block mirrors the uniform slot layout: projection, then
// world-view, then the light for lit programs. Attribute locations
// match the vertex layouts of the mesh package.

const colorVertex = `#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec4 aColor;

layout (std140) uniform Uniforms {
	mat4 projection;
	mat4 worldView;
};

out vec4 vColor;

void main() {
	gl_Position = projection * worldView * vec4(aPosition, 1.0);
	vColor = aColor;
}
`

const colorFragment = `#version 410 core

in vec4 vColor;
out vec4 FragColor;

void main() {
	FragColor = vColor;
}
`

const texturedVertex = `#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 2) in vec2 aTexCoord;

layout (std140) uniform Uniforms {
	mat4 projection;
	mat4 worldView;
};

out vec2 vTexCoord;

void main() {
	gl_Position = projection * worldView * vec4(aPosition, 1.0);
	vTexCoord = aTexCoord;
}
`

const texturedFragment = `#version 410 core

in vec2 vTexCoord;
out vec4 FragColor;

uniform sampler2D tex;

void main() {
	FragColor = texture(tex, vTexCoord);
}
`

const litVertex = `#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 2) in vec2 aTexCoord;
layout (location = 3) in vec3 aNormal;

struct Light {
	vec3 color;
	float ambientIntensity;
	vec3 direction;
	float diffuseIntensity;
	float shininess;
	float specularIntensity;
};

layout (std140) uniform Uniforms {
	mat4 projection;
	mat4 worldView;
	Light light;
};

out vec2 vTexCoord;
out vec3 vNormal;
out vec3 vFragPos;

void main() {
	vec4 pos = worldView * vec4(aPosition, 1.0);
	gl_Position = projection * pos;
	vTexCoord = aTexCoord;
	vNormal = mat3(worldView) * aNormal;
	vFragPos = pos.xyz;
}
`

const litFragment = `#version 410 core

struct Light {
	vec3 color;
	float ambientIntensity;
	vec3 direction;
	float diffuseIntensity;
	float shininess;
	float specularIntensity;
};

layout (std140) uniform Uniforms {
	mat4 projection;
	mat4 worldView;
	Light light;
};

in vec2 vTexCoord;
in vec3 vNormal;
in vec3 vFragPos;
out vec4 FragColor;

uniform sampler2D tex;

void main() {
	vec3 n = normalize(vNormal);
	vec3 toLight = normalize(-light.direction);

	vec3 ambient = light.color * light.ambientIntensity;

	float diffuseFactor = max(dot(n, toLight), 0.0);
	vec3 diffuse = light.color * light.diffuseIntensity * diffuseFactor;

	vec3 eye = normalize(-vFragPos);
	vec3 reflected = reflect(-toLight, n);
	float specularFactor = pow(max(dot(reflected, eye), 0.0), light.shininess);
	vec3 specular = light.color * light.specularIntensity * specularFactor;

	vec4 color = texture(tex, vTexCoord);
	FragColor = vec4(color.rgb * (ambient + diffuse + specular), color.a);
}
`
