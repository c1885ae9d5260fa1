package shader

var plasmaUniforms = []uniformDecl{
	{"float", "u_time"},
	{"vec2", "u_resolution"},
	{"float", "u_opacity"},
	{"vec3", "u_color"},
	{"float", "u_dotDensity"},
	{"float", "u_vortexStrength"},
	{"float", "u_noiseScale"},
	{"float", "u_intensity"},
}

// Three swirls warp the sample point, two fbm fields add turbulence, and the
// result is quantised into a grid of soft dots that fade near the edges.
const plasmaBody = `
float fbm(vec2 p) {
    float value = 0.0;
    float amplitude = 0.5;
    float frequency = 1.0;
    for (int i = 0; i < 5; i++) {
        value += amplitude * snoise(p * frequency);
        amplitude *= 0.5;
        frequency *= 2.0;
    }
    return value;
}

vec2 vortex(vec2 uv, vec2 center, float strength, float time) {
    vec2 d = uv - center;
    float dist = length(d);
    float angle = atan(d.y, d.x);
    float rotation = strength / (dist + 0.3) * sin(time * 0.5);
    float a = angle + rotation;
    return center + vec2(cos(a), sin(a)) * dist;
}

void main() {
    vec2 uv = v_uv;
    float aspect = u_resolution.x / u_resolution.y;
    float time = u_time;

    vec2 p = vec2(uv.x * aspect, uv.y);
    p = vortex(p, vec2(0.7 * aspect, 0.65), u_vortexStrength, time);
    p = vortex(p, vec2(0.25 * aspect, 0.3), u_vortexStrength * 0.7, time * 1.3);
    p = vortex(p, vec2(0.8 * aspect, 0.2), u_vortexStrength * 0.5, time * 0.8);

    float n1 = fbm(p * u_noiseScale + time * 0.1);
    float n2 = fbm(p * u_noiseScale * 1.5 - time * 0.15);
    p += vec2(n1, n2) * 0.15;

    vec2 cell = fract(p * u_dotDensity) - 0.5;
    float dist = length(cell);

    float field = smoothstep(0.0, 1.0, fbm(p * 0.8 + time * 0.05) * 0.5 + 0.5);

    float plasma = sin(p.x * 3.0 + time) * 0.5 + 0.5;
    plasma += sin(p.y * 2.5 - time * 0.7) * 0.5 + 0.5;
    plasma += sin((p.x + p.y) * 2.0 + time * 0.5) * 0.5 + 0.5;
    plasma /= 3.0;

    float combined = field * plasma;
    float radius = 0.35 * combined + 0.05;
    float dotMask = 1.0 - smoothstep(radius - 0.1, radius + 0.05, dist);
    float glow = exp(-dist * 3.0) * combined * 0.5;

    float intensity = (dotMask + glow) * combined * u_intensity;

    float edge = smoothstep(0.0, 0.15, uv.x) * smoothstep(1.0, 0.85, uv.x);
    edge *= smoothstep(0.0, 0.15, uv.y) * smoothstep(1.0, 0.85, uv.y);
    intensity *= edge;

    fragColor = vec4(u_color * intensity, intensity * u_opacity);
}
`

// PlasmaKernel is the plasma vortex fragment stage.
func PlasmaKernel() string {
	return getFragmentShader(plasmaUniforms, plasmaBody)
}
