package shader

var auraUniforms = []uniformDecl{
	{"float", "u_time"},
	{"vec2", "u_resolution"},
	{"float", "u_opacity"},
	{"float", "u_innerStart"},
	{"float", "u_innerEnd"},
	{"float", "u_outerStart"},
	{"float", "u_outerEnd"},
	{"float", "u_gain"},
	{"vec3", "u_colorDeep"},
	{"vec3", "u_colorAccent"},
	{"float", "u_deepGain"},
	{"vec3", "u_crestColor"},
	{"float", "u_crestGain"},
}

// A smoke texture from two rounds of domain warping, confined to a ring
// around the centre of the drawing area.
const auraBody = `
float smokeFbm(vec2 p) {
    float f = 0.0;
    f += 0.5000 * snoise(p); p *= 2.02;
    f += 0.2500 * snoise(p); p *= 2.03;
    f += 0.1250 * snoise(p); p *= 2.01;
    return f;
}

float ringMask(float d) {
    float hole = smoothstep(u_innerStart, u_innerEnd, d);
    float edge = 1.0 - smoothstep(u_outerStart, u_outerEnd, d);
    return hole * edge;
}

void main() {
    float aspect = u_resolution.x / u_resolution.y;
    vec2 st = vec2(v_uv.x * aspect, v_uv.y);
    float dist = length(st - vec2(0.5 * aspect, 0.5));
    float mask = ringMask(dist);

    float time = u_time;
    vec2 q = vec2(smokeFbm(st), smokeFbm(st + vec2(1.0)));
    vec2 r = vec2(
        smokeFbm(st + q + vec2(1.7, 9.2) + 0.15 * time),
        smokeFbm(st + q + vec2(8.3, 2.8) + 0.126 * time));
    float f = smokeFbm(st + r);

    vec3 color = mix(vec3(0.0), u_colorDeep, clamp(f * u_deepGain, 0.0, 1.0));
    color = mix(color, u_colorAccent, clamp(length(q), 0.0, 1.0));
    color += u_crestColor * pow(max(f, 0.0), 3.0) * u_crestGain;

    fragColor = vec4(color * mask * u_gain * u_opacity, 1.0);
}
`

// AuraKernel is the ring-masked smoke fragment stage. Both presets share it.
func AuraKernel() string {
	return getFragmentShader(auraUniforms, auraBody)
}
